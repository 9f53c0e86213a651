package cmd

import (
	"course_backend/internal/app"
	"course_backend/pkg/database"
	"fmt"

	"github.com/spf13/cobra"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute-grades",
	Short: "Recompute stored overall grades from test attempts",
	Long:  "Recomputes the overall grade and certificate flag of one user (--user) or of every user.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := database.InitDB(&cfg.Database)
		if err != nil {
			return err
		}
		application, err := app.New(cfg, db, nil)
		if err != nil {
			return err
		}
		grades := application.Services.Grades
		out := cmd.OutOrStdout()

		userID, _ := cmd.Flags().GetUint("user")
		if userID != 0 {
			sum, err := grades.RecomputeFor(cmd.Context(), userID)
			if err != nil {
				return err
			}
			grade := "none"
			if sum.OverallGrade != nil {
				grade = fmt.Sprintf("%.1f", *sum.OverallGrade)
			}
			fmt.Fprintf(out, "user %d: grade %s, modules %d, certificate %t\n",
				userID, grade, sum.CompletedModuleCount, sum.CertificateEarned)
			return nil
		}

		failed, err := grades.RecomputeAll(cmd.Context())
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d users failed to recompute", failed)
		}
		fmt.Fprintln(out, "all grades recomputed")
		return nil
	},
}

func init() {
	recomputeCmd.Flags().Uint("user", 0, "Only recompute this user ID")
}
