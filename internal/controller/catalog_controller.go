package controller

import (
	"course_backend/internal/service"
	"course_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

// ListModules godoc
// @Summary Course catalog
// @Description Modules in course order with lessons, test header and assignments
// @Tags catalog
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Module}
// @Router /modules [get]
func (c *CatalogController) ListModules(ctx *gin.Context) {
	modules, err := c.CatalogService.ListModules(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}

// CreateModule godoc
// @Summary Create a module
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateModuleRequest true "Module"
// @Success 201 {object} util.Response{data=model.Module}
// @Router /admin/modules [post]
func (c *CatalogController) CreateModule(ctx *gin.Context) {
	var req service.CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err))
		return
	}
	m, err := c.CatalogService.CreateModule(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, m)
}

// AddLesson godoc
// @Summary Add a lesson to a module
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Module ID"
// @Param body body service.CreateLessonRequest true "Lesson"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /admin/modules/{id}/lessons [post]
func (c *CatalogController) AddLesson(ctx *gin.Context) {
	moduleID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.CreateLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err))
		return
	}
	l, err := c.CatalogService.AddLesson(ctx.Request.Context(), moduleID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, l)
}

// SaveTest godoc
// @Summary Create or replace the test of a module
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Module ID"
// @Param body body service.SaveTestRequest true "Test with questions"
// @Success 200 {object} util.Response{data=model.Test}
// @Router /admin/modules/{id}/test [put]
func (c *CatalogController) SaveTest(ctx *gin.Context) {
	moduleID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.SaveTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err))
		return
	}
	test, err := c.CatalogService.SaveTest(ctx.Request.Context(), moduleID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// AddAssignment godoc
// @Summary Add an assignment to a module
// @Tags admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Module ID"
// @Param body body service.CreateAssignmentRequest true "Assignment"
// @Success 201 {object} util.Response{data=model.Assignment}
// @Router /admin/modules/{id}/assignments [post]
func (c *CatalogController) AddAssignment(ctx *gin.Context) {
	moduleID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	var req service.CreateAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err))
		return
	}
	a, err := c.CatalogService.AddAssignment(ctx.Request.Context(), moduleID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, a)
}
