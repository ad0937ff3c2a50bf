package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/myaicommunity/agenthub/database"
	"github.com/myaicommunity/agenthub/errs"
	"github.com/myaicommunity/agenthub/models"
	"github.com/myaicommunity/agenthub/storage"
)

var urlPattern = regexp.MustCompile(`^https?://.+`)

// linkFields are the optional URL fields validated against urlPattern.
var linkFields = []string{
	"linkedProfile",
	"videoLink",
	"flowFileLink",
	"deployedLink",
	"instructionDocumentLink",
}

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	files       storage.FileStore
	maxUpload   int64
}

func newProjectHandler(projectRepo *database.ProjectRepo, files storage.FileStore, maxUpload int64) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		files:       files,
		maxUpload:   maxUpload,
	}
}

// parseJSONArray decodes a JSON-encoded string array. Absent or invalid
// input yields an empty slice rather than an error.
func parseJSONArray(s string) []string {
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// parseRating coerces the form value to an integer, defaulting to 0 when
// absent or non-numeric.
func parseRating(s string) int {
	rating, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return rating
}

func validateLinks(get func(string) (string, bool)) []string {
	var fieldErrors []string
	for _, field := range linkFields {
		if value, ok := get(field); ok && value != "" && !urlPattern.MatchString(value) {
			fieldErrors = append(fieldErrors, fmt.Sprintf("%s must be a valid URL", field))
		}
	}
	return fieldErrors
}

func validateCategories(categories []string) []string {
	var fieldErrors []string
	for _, c := range categories {
		if !models.IsAllowedCategory(c) {
			fieldErrors = append(fieldErrors, fmt.Sprintf("categories: `%s` is not a valid category", c))
		}
	}
	return fieldErrors
}

// parseMultipart reads the multipart body, enforcing the upload ceiling.
func (h projectHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return errs.NewMaxBodySizeExceededError(h.maxUpload)
		}
		return errs.Malformed("multipart form")
	}
	return nil
}

// takeUpload stores the optional backgroundImage file part, returning nil
// when no file was supplied.
func (h projectHandler) takeUpload(r *http.Request) (*storage.SavedFile, error) {
	file, header, err := r.FormFile("backgroundImage")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Malformed("backgroundImage")
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, errs.NewNotAnImageError(mimeType)
	}
	if header.Size > h.maxUpload {
		return nil, errs.NewFileTooLargeError(h.maxUpload)
	}

	saved, err := h.files.Save(r.Context(), file, header.Filename, mimeType, header.Size)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func savedFileToImage(saved *storage.SavedFile) *models.BackgroundImage {
	if saved == nil {
		return nil
	}
	return &models.BackgroundImage{
		Filename:     saved.Filename,
		OriginalName: saved.OriginalName,
		MimeType:     saved.MimeType,
		Size:         saved.Size,
		Path:         saved.Path,
		URL:          saved.URL,
	}
}

// createProject creates a new project from a multipart submission.
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		if err := h.parseMultipart(w, r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var fieldErrors []string
		for _, field := range []string{"name", "projectName", "projectDescription"} {
			if r.FormValue(field) == "" {
				fieldErrors = append(fieldErrors, fmt.Sprintf("%s is required", field))
			}
		}
		fieldErrors = append(fieldErrors, validateLinks(func(field string) (string, bool) {
			return r.FormValue(field), true
		})...)

		categories := parseJSONArray(r.FormValue("categories"))
		fieldErrors = append(fieldErrors, validateCategories(categories)...)

		rating := parseRating(r.FormValue("rating"))
		if rating < 0 || rating > 5 {
			fieldErrors = append(fieldErrors, "rating must be between 0 and 5")
		}

		if len(fieldErrors) > 0 {
			h.responder.WriteError(w, errs.NewValidationError(fieldErrors...))
			return
		}

		saved, err := h.takeUpload(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := models.Project{
			Name:                    r.FormValue("name"),
			ProjectName:             r.FormValue("projectName"),
			ProjectDescription:      r.FormValue("projectDescription"),
			LinkedProfile:           r.FormValue("linkedProfile"),
			VideoLink:               r.FormValue("videoLink"),
			FlowFileLink:            r.FormValue("flowFileLink"),
			DeployedLink:            r.FormValue("deployedLink"),
			InstructionDocumentLink: r.FormValue("instructionDocumentLink"),
			BackgroundImage:         savedFileToImage(saved),
			Categories:              datatypes.NewJSONSlice(categories),
			Tools:                   datatypes.NewJSONSlice(parseJSONArray(r.FormValue("tools"))),
			Rating:                  rating,
			CreatedByID:             user.ID,
		}

		if err := h.projectRepo.Add(&project); err != nil {
			// No orphaned files on a failed create.
			if saved != nil {
				if delErr := h.files.Delete(r.Context(), saved.Path); delErr != nil {
					h.logger.Warn().Err(delErr).Str("path", saved.Path).Msg("failed to clean up uploaded file")
				}
			}
			h.responder.WriteError(w, wrapDatabaseError("create", "project", err))
			return
		}

		created, err := h.projectRepo.FindByID(project.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find created", "project", err))
			return
		}

		h.responder.WriteData(w, http.StatusCreated, "Project created successfully", created)
	}
}

// listProjects returns one page of projects with a pagination summary.
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		page, err := strconv.Atoi(query.Get("page"))
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(query.Get("limit"))
		if err != nil || limit < 1 {
			limit = 10
		}

		status := query.Get("status")
		if status == "" {
			status = models.StatusPublished
		}

		projects, total, err := h.projectRepo.FindPage(r.Context(), database.ProjectFilter{
			Status:   status,
			Category: query.Get("category"),
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "projects", err))
			return
		}

		if projects == nil {
			projects = []models.Project{}
		}

		h.responder.WritePage(w, projects, Pagination{
			Current: page,
			Pages:   int(math.Ceil(float64(total) / float64(limit))),
			Total:   total,
		})
	}
}

// getProject retrieves a single project with its owner populated.
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid projectID"))
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				h.responder.WriteError(w, errs.NewNotFoundError("Project not found"))
				return
			}
			h.responder.WriteError(w, wrapDatabaseError("find", "project", err))
			return
		}

		h.responder.WriteData(w, http.StatusOK, "", project)
	}
}

// loadOwned fetches the project and enforces the owner-or-admin rule.
func (h projectHandler) loadOwned(r *http.Request, action string) (*models.Project, *models.User, error) {
	user, err := ctxGetUser(r.Context())
	if err != nil {
		return nil, nil, errs.Unauthorized
	}

	projectID, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		return nil, nil, errs.NewBadRequestError("invalid projectID")
	}

	project, err := h.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.NewNotFoundError("Project not found")
		}
		return nil, nil, wrapDatabaseError("find", "project", err)
	}

	if project.CreatedByID != user.ID && !user.IsAdmin() {
		return nil, nil, errs.NewForbiddenError(fmt.Sprintf("Not authorized to %s this project", action))
	}

	return project, user, nil
}

// updateProject replaces the supplied fields of an existing project. When a
// new image arrives, the previous file is deleted only after the record
// write has committed, so a failed update never leaves the record pointing
// at a removed file.
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, _, err := h.loadOwned(r, "update")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.parseMultipart(w, r); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		form := r.MultipartForm.Value
		supplied := func(field string) (string, bool) {
			values, ok := form[field]
			if !ok || len(values) == 0 {
				return "", false
			}
			return values[0], true
		}

		fieldErrors := validateLinks(supplied)

		var categories []string
		if raw, ok := supplied("categories"); ok {
			categories = parseJSONArray(raw)
			fieldErrors = append(fieldErrors, validateCategories(categories)...)
		}
		if raw, ok := supplied("rating"); ok {
			if rating := parseRating(raw); rating < 0 || rating > 5 {
				fieldErrors = append(fieldErrors, "rating must be between 0 and 5")
			}
		}
		if status, ok := supplied("status"); ok {
			switch status {
			case models.StatusDraft, models.StatusPublished, models.StatusArchived:
			default:
				fieldErrors = append(fieldErrors, "status must be one of draft, published, archived")
			}
		}

		if len(fieldErrors) > 0 {
			h.responder.WriteError(w, errs.NewValidationError(fieldErrors...))
			return
		}

		setIfSupplied := func(field string, dst *string) {
			if value, ok := supplied(field); ok {
				*dst = value
			}
		}
		setIfSupplied("name", &project.Name)
		setIfSupplied("projectName", &project.ProjectName)
		setIfSupplied("projectDescription", &project.ProjectDescription)
		setIfSupplied("linkedProfile", &project.LinkedProfile)
		setIfSupplied("videoLink", &project.VideoLink)
		setIfSupplied("flowFileLink", &project.FlowFileLink)
		setIfSupplied("deployedLink", &project.DeployedLink)
		setIfSupplied("instructionDocumentLink", &project.InstructionDocumentLink)
		setIfSupplied("status", &project.Status)
		if categories != nil {
			project.Categories = datatypes.NewJSONSlice(categories)
		}
		if raw, ok := supplied("tools"); ok {
			project.Tools = datatypes.NewJSONSlice(parseJSONArray(raw))
		}
		if raw, ok := supplied("rating"); ok {
			project.Rating = parseRating(raw)
		}

		saved, err := h.takeUpload(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var oldPath string
		if saved != nil {
			if project.BackgroundImage != nil {
				oldPath = project.BackgroundImage.Path
			}
			project.BackgroundImage = savedFileToImage(saved)
		}

		if err := h.projectRepo.Update(project); err != nil {
			if saved != nil {
				if delErr := h.files.Delete(r.Context(), saved.Path); delErr != nil {
					h.logger.Warn().Err(delErr).Str("path", saved.Path).Msg("failed to clean up uploaded file")
				}
			}
			h.responder.WriteError(w, wrapDatabaseError("update", "project", err))
			return
		}

		if oldPath != "" {
			if err := h.files.Delete(r.Context(), oldPath); err != nil {
				h.logger.Warn().Err(err).Str("path", oldPath).Msg("failed to delete replaced image")
			}
		}

		updated, err := h.projectRepo.FindByID(project.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find updated", "project", err))
			return
		}

		h.responder.WriteData(w, http.StatusOK, "Project updated successfully", updated)
	}
}

// deleteProject removes the project record and its stored image.
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, _, err := h.loadOwned(r, "delete")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if project.BackgroundImage != nil && project.BackgroundImage.Path != "" {
			if err := h.files.Delete(r.Context(), project.BackgroundImage.Path); err != nil {
				h.logger.Warn().Err(err).Str("path", project.BackgroundImage.Path).Msg("failed to delete project image")
			}
		}

		if err := h.projectRepo.Delete(project.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "project", err))
			return
		}

		h.responder.WriteMessage(w, "Project deleted successfully")
	}
}

// listCategories returns the fixed category enumeration.
func (h projectHandler) listCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteData(w, http.StatusOK, "", models.AllowedCategories)
	}
}
