package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"dub-pipeline-service/internal/entity"
	"dub-pipeline-service/internal/repository/postgresql"
	"dub-pipeline-service/internal/service"
)

// HealthChecker reports per-stage readiness of the model backends.
type HealthChecker interface {
	HealthCheck(ctx context.Context) map[entity.Stage]error
}

type Handler struct {
	projects *service.ProjectService
	orch     *service.Orchestrator
	health   HealthChecker
	validate *validator.Validate
}

func NewHandler(projects *service.ProjectService, orch *service.Orchestrator, health HealthChecker) *Handler {
	return &Handler{
		projects: projects,
		orch:     orch,
		health:   health,
		validate: validator.New(),
	}
}

// writeServiceErr maps domain errors onto HTTP statuses. Everything the
// service layer does not name explicitly is a 500.
func writeServiceErr(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, apiError{
			Message:  "video rejected",
			Problems: ve.Problems,
		})
	case errors.Is(err, postgresql.ErrNotFound):
		writeErr(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrJobConflict),
		errors.Is(err, service.ErrStageNotReady),
		errors.Is(err, service.ErrProjectTerminal),
		errors.Is(err, service.ErrNotReopenable):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

type createProjectDTO struct {
	VideoKey       string `json:"video_key" validate:"required"`
	SourceLanguage string `json:"source_language" validate:"required,bcp47_language_tag"`
	TargetLanguage string `json:"target_language" validate:"required,bcp47_language_tag,nefield=SourceLanguage"`
}

type createProjectResp struct {
	ID string `json:"id"`
}

type jobResp struct {
	ID        string           `json:"id"`
	Stage     entity.Stage     `json:"stage"`
	Status    entity.JobStatus `json:"status"`
	Attempt   int              `json:"attempt"`
	Progress  int              `json:"progress"`
	Error     *string          `json:"error,omitempty"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
}

type jobIDResp struct {
	JobID string `json:"job_id"`
}

// CreateProject godoc
// @Summary Create a dubbing project
// @Description Validates the uploaded video against the acceptance policy and creates the project. Rejected media creates nothing.
// @Tags projects
// @Accept json
// @Produce json
// @Param request body createProjectDTO true "project payload"
// @Success 201 {object} createProjectResp
// @Failure 400 {object} apiError
// @Failure 422 {object} apiError
// @Failure 500 {object} apiError
// @Router /projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var dto createProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.projects.CreateProject(r.Context(), service.CreateProjectRequest{
		VideoKey:       dto.VideoKey,
		SourceLanguage: dto.SourceLanguage,
		TargetLanguage: dto.TargetLanguage,
	})
	if err != nil {
		writeServiceErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createProjectResp{ID: id.String()})
}

// StartProject godoc
// @Summary Start the dubbing pipeline
// @Description Queues the first stage of an uploaded project.
// @Tags projects
// @Produce json
// @Param id path string true "project id (uuid)"
// @Success 202 {object} jobIDResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /projects/{id}/start [post]
func (h *Handler) StartProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	jobID, err := h.orch.Advance(r.Context(), id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, jobIDResp{JobID: jobID.String()})
}

// GetStatus godoc
// @Summary Get project status
// @Tags projects
// @Produce json
// @Param id path string true "project id (uuid)"
// @Success 200 {object} service.StatusView
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /projects/{id} [get]
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	v, err := h.orch.Status(r.Context(), id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ListJobs godoc
// @Summary List a project's jobs
// @Description Returns every job row, including superseded attempts.
// @Tags projects
// @Produce json
// @Param id path string true "project id (uuid)"
// @Success 200 {array} jobResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /projects/{id}/jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if _, err := h.projects.GetProject(r.Context(), id); err != nil {
		writeServiceErr(w, err)
		return
	}
	jobs, err := h.projects.ListJobs(r.Context(), id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	resp := make([]jobResp, 0, len(jobs))
	for _, j := range jobs {
		resp = append(resp, jobResp{
			ID:        j.ID.String(),
			Stage:     j.Stage,
			Status:    j.Status,
			Attempt:   j.Attempt,
			Progress:  j.Progress,
			Error:     j.ErrorMessage,
			CreatedAt: j.CreatedAt.Format(time.RFC3339),
			UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetArtifact godoc
// @Summary Get a review artifact
// @Tags projects
// @Produce json
// @Param id path string true "project id (uuid)"
// @Param kind path string true "artifact kind" Enums(transcript, translation, dubbed_audio)
// @Success 200 {object} entity.Artifact
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Router /projects/{id}/artifacts/{kind} [get]
func (h *Handler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	kind := entity.ArtifactKind(chi.URLParam(r, "kind"))
	switch kind {
	case entity.ArtifactTranscript, entity.ArtifactTranslation, entity.ArtifactDubbedAudio:
	default:
		writeErr(w, http.StatusBadRequest, "unknown artifact kind")
		return
	}
	a, err := h.projects.GetArtifact(r.Context(), id, kind)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type approveDTO struct {
	Stage entity.Stage `json:"stage" validate:"required,oneof=stt translation"`
}

// Approve godoc
// @Summary Approve a review artifact
// @Description Marks the stage's artifact approved and queues the next stage.
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "project id (uuid)"
// @Param request body approveDTO true "stage under review"
// @Success 202 {object} jobIDResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /projects/{id}/approve [post]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var dto approveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	jobID, err := h.orch.Approve(r.Context(), id, dto.Stage)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, jobIDResp{JobID: jobID.String()})
}

type cancelDTO struct {
	Reason string `json:"reason"`
}

// Cancel godoc
// @Summary Cancel a project
// @Description Fails the project and its active jobs; in-flight workers abort on their next progress report.
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "project id (uuid)"
// @Param request body cancelDTO false "optional reason"
// @Success 202 {object} map[string]string
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /projects/{id}/cancel [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var dto cancelDTO
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}
	if err := h.orch.Cancel(r.Context(), id, dto.Reason); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cancelling"})
}

// Retry godoc
// @Summary Retry a failed project
// @Description Reopens the project at the stage that failed and runs it again.
// @Tags projects
// @Produce json
// @Param id path string true "project id (uuid)"
// @Success 202 {object} jobIDResp
// @Failure 400 {object} apiError
// @Failure 404 {object} apiError
// @Failure 409 {object} apiError
// @Router /projects/{id}/retry [post]
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	jobID, err := h.orch.Reopen(r.Context(), id)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, jobIDResp{JobID: jobID.String()})
}

// Health godoc
// @Summary Service and model backend health
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"service": "ok"}
	code := http.StatusOK
	if h.health != nil {
		for stage, err := range h.health.HealthCheck(r.Context()) {
			if err != nil {
				resp[string(stage)] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				resp[string(stage)] = "ok"
			}
		}
	}
	writeJSON(w, code, resp)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
