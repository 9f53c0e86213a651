package controller

import (
	"course_backend/internal/service"
	"course_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetProgress godoc
// @Summary Course progress
// @Description Per-module progress percentage and lock state of the caller
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Router /progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	p, err := c.ProgressService.GetCourseProgress(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// CompleteLesson godoc
// @Summary Mark a lesson complete
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Lesson ID"
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Failure 402 {object} util.Response "Course not purchased"
// @Failure 403 {object} util.Response "Module locked"
// @Router /lessons/{id}/complete [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	lessonID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	p, err := c.ProgressService.CompleteLesson(ctx.Request.Context(), lessonID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// ResetProgress godoc
// @Summary Reset lesson progress
// @Description Removes all lesson completions of the caller; test attempts and the grade are kept
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Router /progress [delete]
func (c *ProgressController) ResetProgress(ctx *gin.Context) {
	p, err := c.ProgressService.ResetProgress(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// GrantExemption godoc
// @Summary Unlock a module for a learner
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "User ID"
// @Param body body service.ExemptionRequest true "Exemption"
// @Success 201 {object} util.Response
// @Router /admin/users/{userId}/exemptions [post]
func (c *ProgressController) GrantExemption(ctx *gin.Context) {
	userID, err := util.ParseID("userId", ctx.Param("userId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.ExemptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err))
		return
	}
	if err := c.ProgressService.GrantExemption(ctx.Request.Context(), userID, req); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"userId": userID, "moduleId": req.ModuleID})
}

// RevokeExemption godoc
// @Summary Remove a module exemption
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param userId path int true "User ID"
// @Param moduleId path int true "Module ID"
// @Success 200 {object} util.Response
// @Router /admin/users/{userId}/exemptions/{moduleId} [delete]
func (c *ProgressController) RevokeExemption(ctx *gin.Context) {
	userID, err := util.ParseID("userId", ctx.Param("userId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	moduleID, err := util.ParseID("moduleId", ctx.Param("moduleId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if err := c.ProgressService.RevokeExemption(ctx.Request.Context(), userID, moduleID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
