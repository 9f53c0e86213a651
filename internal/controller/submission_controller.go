package controller

import (
	"course_backend/internal/service"
	"course_backend/internal/util"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
}

func NewSubmissionController(submissionService *service.SubmissionService) *SubmissionController {
	return &SubmissionController{SubmissionService: submissionService}
}

// formFile returns the optional "file" part of a multipart request. The
// returned close func is never nil.
func formFile(ctx *gin.Context) (*service.FileUpload, func(), error) {
	header, err := ctx.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, util.Invalid("file", err.Error())
	}
	return openUpload(header)
}

func openUpload(header *multipart.FileHeader) (*service.FileUpload, func(), error) {
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &service.FileUpload{Filename: header.Filename, Size: header.Size, Body: f}, func() { f.Close() }, nil
}

// ListAssignments godoc
// @Summary Assignments of the course
// @Tags assignments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Assignment}
// @Router /assignments [get]
func (c *SubmissionController) ListAssignments(ctx *gin.Context) {
	list, err := c.SubmissionService.ListAssignments(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// SubmitAssignment godoc
// @Summary Submit an assignment
// @Tags assignments
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Assignment ID"
// @Param content formData string false "Answer text"
// @Param file formData file false "Attachment"
// @Success 201 {object} util.Response{data=model.AssignmentSubmission}
// @Router /assignments/{id}/submissions [post]
func (c *SubmissionController) SubmitAssignment(ctx *gin.Context) {
	assignmentID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, util.MaxSubmissionSize+1<<20)

	file, closeFile, err := formFile(ctx)
	defer closeFile()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	sub, err := c.SubmissionService.SubmitAssignment(ctx.Request.Context(), assignmentID, ctx.PostForm("content"), file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// ListSubmissions godoc
// @Summary The caller's submissions of an assignment
// @Tags assignments
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} util.Response{data=[]model.AssignmentSubmission}
// @Router /assignments/{id}/submissions [get]
func (c *SubmissionController) ListSubmissions(ctx *gin.Context) {
	assignmentID, err := util.ParseID("id", ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	list, err := c.SubmissionService.ListAssignmentSubmissions(ctx.Request.Context(), assignmentID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// SubmitProject godoc
// @Summary Submit the final project
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param repositoryUrl formData string false "Repository URL"
// @Param file formData file false "Archive"
// @Success 201 {object} util.Response{data=model.Project}
// @Router /projects [post]
func (c *SubmissionController) SubmitProject(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, util.MaxSubmissionSize+1<<20)

	var req service.ProjectRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.HandleError(ctx, util.BindingError(err))
		return
	}

	file, closeFile, err := formFile(ctx)
	defer closeFile()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	p, err := c.SubmissionService.SubmitProject(ctx.Request.Context(), req, file)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, p)
}

// MyProject godoc
// @Summary The caller's final project
// @Tags projects
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Project}
// @Failure 404 {object} util.Response
// @Router /projects/mine [get]
func (c *SubmissionController) MyProject(ctx *gin.Context) {
	p, err := c.SubmissionService.MyProject(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, p)
}
