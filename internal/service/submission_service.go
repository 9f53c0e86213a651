package service

import (
	"context"
	"course_backend/internal/model"
	"course_backend/internal/session"
	"course_backend/internal/util"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// FileUpload is an uploaded file as handed over by a controller.
type FileUpload struct {
	Filename string
	Size     int64
	Body     io.ReadSeeker
}

// Uploader is satisfied by StorageService.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
}

// SubmissionService handles assignment and final project submissions.
type SubmissionService struct {
	Catalog     CatalogStore
	Submissions SubmissionStore
	Gate        ModuleGate
	Storage     Uploader
	now         func() time.Time
}

func NewSubmissionService(catalog CatalogStore, submissions SubmissionStore, gate ModuleGate, storage Uploader) *SubmissionService {
	return &SubmissionService{
		Catalog:     catalog,
		Submissions: submissions,
		Gate:        gate,
		Storage:     storage,
		now:         time.Now,
	}
}

type ProjectRequest struct {
	Title         string `form:"title" json:"title" binding:"required,max=255"`
	Description   string `form:"description" json:"description"`
	RepositoryURL string `form:"repositoryUrl" json:"repositoryUrl" binding:"omitempty,url"`
}

// store validates and uploads f below prefix and returns its URL.
func (s *SubmissionService) store(ctx context.Context, prefix string, userID uint, f *FileUpload) (string, error) {
	if f.Size > util.MaxSubmissionSize {
		return "", util.Invalid("file", fmt.Sprintf("file exceeds %d MB", util.MaxSubmissionSize>>20))
	}
	mimeType, err := util.ValidateMimeType(f.Body, util.AllowedSubmissionTypes)
	if err != nil {
		return "", util.Invalid("file", err.Error())
	}
	if _, err := f.Body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%d/%s%s", prefix, userID, model.GenerateUUID(), util.SafeExt(f.Filename))
	url, err := s.Storage.Upload(ctx, key, f.Body, f.Size, mimeType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return url, nil
}

func (s *SubmissionService) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	if _, err := session.Require(ctx); err != nil {
		return nil, err
	}
	list, err := s.Catalog.ListAssignments(ctx)
	if err != nil {
		return nil, util.NewPersistenceError("list assignments", err)
	}
	return list, nil
}

// SubmitAssignment stores a new submission for an assignment of an open
// module. Text, a file or both must be present.
func (s *SubmissionService) SubmitAssignment(ctx context.Context, assignmentID uint, content string, file *FileUpload) (*model.AssignmentSubmission, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" && file == nil {
		return nil, util.NewValidationError(errors.New("submission is empty"),
			util.FieldError{Field: "content", Error: "content or file is required"})
	}

	assignment, err := s.Catalog.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, util.NewPersistenceError("find assignment", err)
	}
	if err := s.Gate.EnsureModuleOpen(ctx, sess.UserID(), assignment.ModuleID); err != nil {
		return nil, err
	}

	sub := &model.AssignmentSubmission{
		AssignmentID: assignment.ID,
		UserID:       sess.UserID(),
		Content:      content,
		SubmittedAt:  s.now(),
	}
	if file != nil {
		url, err := s.store(ctx, "assignments", sess.UserID(), file)
		if err != nil {
			return nil, err
		}
		sub.FileURL = url
	}

	if err := s.Submissions.CreateAssignmentSubmission(ctx, sub); err != nil {
		return nil, util.NewPersistenceError("save submission", err)
	}
	return sub, nil
}

func (s *SubmissionService) ListAssignmentSubmissions(ctx context.Context, assignmentID uint) ([]model.AssignmentSubmission, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.Submissions.ListAssignmentSubmissions(ctx, assignmentID, sess.UserID())
	if err != nil {
		return nil, util.NewPersistenceError("list submissions", err)
	}
	return list, nil
}

// SubmitProject saves the caller's final project, replacing an earlier one.
func (s *SubmissionService) SubmitProject(ctx context.Context, req ProjectRequest, file *FileUpload) (*model.Project, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	if req.RepositoryURL == "" && file == nil {
		return nil, util.NewValidationError(errors.New("project is empty"),
			util.FieldError{Field: "repositoryUrl", Error: "repository URL or file is required"})
	}

	p := &model.Project{
		UserID:        sess.UserID(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		RepositoryURL: req.RepositoryURL,
		SubmittedAt:   s.now(),
	}
	if file != nil {
		url, err := s.store(ctx, "projects", sess.UserID(), file)
		if err != nil {
			return nil, err
		}
		p.FileURL = url
	}

	if err := s.Submissions.SaveProject(ctx, p); err != nil {
		return nil, util.NewPersistenceError("save project", err)
	}
	return p, nil
}

func (s *SubmissionService) MyProject(ctx context.Context) (*model.Project, error) {
	sess, err := session.Require(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.Submissions.FindProject(ctx, sess.UserID())
	if err != nil {
		return nil, util.NewPersistenceError("find project", err)
	}
	return p, nil
}
