package tasks

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/taskhub-go/apperror"
	"github.com/user/taskhub-go/auth"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handlers exposes the task Service over HTTP. The owner id for every
// operation comes from the authenticated principal in the request context,
// never from the payload.
type Handlers struct {
	service *Service
}

// NewHandlers creates task Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the task routes on r. The caller is expected to have
// applied the auth middleware already.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.handleCreate())
	r.Get("/", h.handleList())
	r.Get("/overdue", h.handleOverdue())
	r.Get("/statistics", h.handleStatistics())
	r.Get("/{id}", h.handleGet())
	r.Put("/{id}", h.handleUpdate())
	r.Delete("/{id}", h.handleDelete())
}

// handleCreate godoc
// @Summary Create a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskBody body tasks.TaskRequest true "Task fields"
// @Success 201 {object} tasks.TaskResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /tasks [post]
func (h *Handlers) handleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("title is required and fields must fit their length limits", err))
			return
		}

		task, err := h.service.Create(r.Context(), principal.UserID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	}
}

// handleList godoc
// @Summary List tasks
// @Description Lists the caller's tasks. A search keyword takes precedence over the structured filters; otherwise status or priority filter alone; otherwise paginated with sorting and optional due-date range.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param page query int false "Zero-based page index" default(0)
// @Param size query int false "Page size" default(10)
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortDir query string false "asc or desc" default(asc)
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param search query string false "Keyword over title and description"
// @Param dueFrom query string false "Due date lower bound (YYYY-MM-DD)"
// @Param dueTo query string false "Due date upper bound (YYYY-MM-DD)"
// @Success 200 {object} tasks.TaskPage
// @Failure 400 {object} apperror.ErrorResponse "Invalid criteria"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /tasks [get]
func (h *Handlers) handleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		query, err := parseListQuery(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		page, err := h.service.List(r.Context(), principal.UserID, *query)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// handleGet godoc
// @Summary Get a task by id
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task id"
// @Success 200 {object} tasks.TaskResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Task not found"
// @Router /tasks/{id} [get]
func (h *Handlers) handleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		taskID, err := parseTaskID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		task, err := h.service.Get(r.Context(), principal.UserID, taskID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

// handleUpdate godoc
// @Summary Update a task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task id"
// @Param taskBody body tasks.TaskRequest true "Task fields"
// @Success 200 {object} tasks.TaskResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Task not found"
// @Router /tasks/{id} [put]
func (h *Handlers) handleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		taskID, err := parseTaskID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req TaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if err := validate.Struct(req); err != nil {
			auth.WriteError(w, r, apperror.NewValidationError("title is required and fields must fit their length limits", err))
			return
		}

		task, err := h.service.Update(r.Context(), principal.UserID, taskID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

// handleDelete godoc
// @Summary Delete a task
// @Tags tasks
// @Security BearerAuth
// @Param id path int true "Task id"
// @Success 204 "Task deleted"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Failure 404 {object} apperror.ErrorResponse "Task not found"
// @Router /tasks/{id} [delete]
func (h *Handlers) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		taskID, err := parseTaskID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if err := h.service.Delete(r.Context(), principal.UserID, taskID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleOverdue godoc
// @Summary List overdue tasks
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} tasks.TaskResponse
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /tasks/overdue [get]
func (h *Handlers) handleOverdue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		tasks, err := h.service.Overdue(r.Context(), principal.UserID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

// handleStatistics godoc
// @Summary Task statistics
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} tasks.Statistics
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized"
// @Router /tasks/statistics [get]
func (h *Handlers) handleStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("not authenticated", nil))
			return
		}

		stats, err := h.service.Statistics(r.Context(), principal.UserID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func parseTaskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperror.NewBadRequestError("invalid task id", err)
	}
	return id, nil
}

// parseListQuery builds the criteria for one list invocation from the query
// string.
func parseListQuery(r *http.Request) (*ListQuery, error) {
	values := r.URL.Query()

	query := &ListQuery{
		Keyword: values.Get("search"),
		SortBy:  values.Get("sortBy"),
		SortDir: values.Get("sortDir"),
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperror.NewBadRequestError("invalid page: expected integer", err)
		}
		query.Page = page
	}
	if raw := values.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperror.NewBadRequestError("invalid size: expected integer", err)
		}
		query.Size = size
	}
	if raw := values.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		query.Status = &status
	}
	if raw := values.Get("priority"); raw != "" {
		priority, err := ParsePriority(raw)
		if err != nil {
			return nil, err
		}
		query.Priority = &priority
	}
	if raw := values.Get("dueFrom"); raw != "" {
		from, err := parseDueDate(&raw)
		if err != nil {
			return nil, err
		}
		query.DueFrom = from
	}
	if raw := values.Get("dueTo"); raw != "" {
		to, err := parseDueDate(&raw)
		if err != nil {
			return nil, err
		}
		query.DueTo = to
	}

	return query, nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}
