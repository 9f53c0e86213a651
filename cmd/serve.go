package cmd

import (
	"course_backend/internal/app"
	"course_backend/pkg/database"
	"course_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Migrate the schema before serving")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer logger.Log.Sync()

	// debug mode always migrates, release only on request
	migrate, _ := cmd.Flags().GetBool("migrate")
	if migrate || cfg.Server.Mode != "release" {
		if err := database.Migrate(application.DB); err != nil {
			return err
		}
	}

	return application.Run()
}
