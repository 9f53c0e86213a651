package controller

import (
	"course_backend/internal/service"
	"course_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// GetTest godoc
// @Summary Test questions
// @Tags tests
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response{data=model.Test}
// @Router /tests/{id} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
	testID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	test, err := c.TestService.GetForLearner(ctx.Request.Context(), testID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// SubmitTest godoc
// @Summary Submit answers
// @Description Grades the answers, stores the attempt and recomputes the overall grade
// @Tags tests
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Param body body service.SubmitTestRequest true "Answers"
// @Success 200 {object} util.Response{data=service.SubmitTestResult}
// @Failure 400 {object} util.Response
// @Router /tests/{id}/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	testID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.SubmitTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err))
		return
	}
	res, err := c.TestService.Submit(ctx.Request.Context(), testID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// ListAttempts godoc
// @Summary Attempts of a test
// @Tags tests
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response{data=[]model.TestAttempt}
// @Router /tests/{id}/attempts [get]
func (c *TestController) ListAttempts(ctx *gin.Context) {
	testID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	attempts, err := c.TestService.ListAttempts(ctx.Request.Context(), testID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
