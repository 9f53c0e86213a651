package controller

import (
	"course_backend/internal/service"
	"course_backend/internal/util"
	"course_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GradeController struct {
	GradeService *service.GradeService
}

func NewGradeController(gradeService *service.GradeService) *GradeController {
	return &GradeController{GradeService: gradeService}
}

// writeRecompute replies with the summary even when storing it failed.
func writeRecompute(ctx *gin.Context, sum *service.GradeSummary, err error) {
	if err != nil && sum != nil && util.IsPersistence(err) {
		logger.Log.Error("Grade not stored", zap.String("path", ctx.FullPath()), zap.Error(err))
		util.ErrorWithData(ctx, http.StatusInternalServerError, "grade computed but not saved", sum)
		return
	}
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sum)
}

// Summary godoc
// @Summary Overall grade
// @Description Latest score per test and the mean over attempted tests
// @Tags grades
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.GradeSummary}
// @Router /grades [get]
func (c *GradeController) Summary(ctx *gin.Context) {
	sum, err := c.GradeService.Summary(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sum)
}

// Recompute godoc
// @Summary Recompute and store the caller's grade
// @Tags grades
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.GradeSummary}
// @Failure 500 {object} util.Response{data=service.GradeSummary} "Computed but not stored"
// @Router /grades/recompute [post]
func (c *GradeController) Recompute(ctx *gin.Context) {
	sum, err := c.GradeService.Recompute(ctx.Request.Context())
	writeRecompute(ctx, sum, err)
}

// RecomputeUser godoc
// @Summary Recompute and store a learner's grade
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "User ID"
// @Success 200 {object} util.Response{data=service.GradeSummary}
// @Router /admin/users/{userId}/grades/recompute [post]
func (c *GradeController) RecomputeUser(ctx *gin.Context) {
	userID, err := util.ParseID("userId", ctx.Param("userId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	sum, err := c.GradeService.RecomputeUser(ctx.Request.Context(), userID)
	writeRecompute(ctx, sum, err)
}

// Certificate godoc
// @Summary Certificate status
// @Tags grades
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Certificate}
// @Router /certificate [get]
func (c *GradeController) Certificate(ctx *gin.Context) {
	cert, err := c.GradeService.Certificate(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, cert)
}
