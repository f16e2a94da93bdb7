package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

type taskRequest struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	List        string     `json:"list"`
	Priority    string     `json:"priority"`
	DueDate     time.Time  `json:"due_date"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Completed   bool       `json:"completed"`
	Important   bool       `json:"important"`
	Checklist   []string   `json:"checklist"`
}

type taskPatchRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	List           *string    `json:"list"`
	Priority       *string    `json:"priority"`
	DueDate        *time.Time `json:"due_date"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	ClearStartDate bool       `json:"clear_start_date"`
	ClearEndDate   bool       `json:"clear_end_date"`
	Completed      *bool      `json:"completed"`
	Important      *bool      `json:"important"`
}

type checklistRequest struct {
	Text string `json:"text"`
}

type attachmentRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	filters, err := filterFromRequest(r, s.session.State())
	if err != nil {
		if fields, ok := store.FieldErrors(err); ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid query parameters", Fields: fields})
			return
		}
		s.fail(w, r, err)
		return
	}
	tasks, err := s.session.FilteredBy(filters)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	task, err := s.session.CreateTask(r.Context(), store.TaskInput{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		List:        req.List,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Completed:   req.Completed,
		Important:   req.Important,
		Checklist:   req.Checklist,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task, err := s.session.Task(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	history, err := s.session.History(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	payload := struct {
		Task     model.Task           `json:"task"`
		ListName string               `json:"list_name"`
		History  []model.HistoryEntry `json:"history"`
	}{Task: task, History: history}
	payload.ListName, _ = s.session.ListName(task.List)

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var req taskPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}

	task, err := s.session.UpdateTask(r.Context(), chi.URLParam(r, "id"), store.TaskPatch{
		Title:          req.Title,
		Description:    req.Description,
		List:           req.List,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		ClearStartDate: req.ClearStartDate,
		ClearEndDate:   req.ClearEndDate,
		Completed:      req.Completed,
		Important:      req.Important,
	})
	s.respondTask(w, r, task, err)
}

func (s *Server) purgeTask(w http.ResponseWriter, r *http.Request) {
	if _, err := s.session.Purge(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) taskHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.session.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) toggleComplete(w http.ResponseWriter, r *http.Request) {
	task, err := s.session.ToggleComplete(r.Context(), chi.URLParam(r, "id"))
	s.respondTask(w, r, task, err)
}

func (s *Server) toggleImportant(w http.ResponseWriter, r *http.Request) {
	task, err := s.session.ToggleImportant(r.Context(), chi.URLParam(r, "id"))
	s.respondTask(w, r, task, err)
}

func (s *Server) trashTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.session.Trash(r.Context(), chi.URLParam(r, "id"))
	s.respondTask(w, r, task, err)
}

func (s *Server) restoreTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.session.Restore(r.Context(), chi.URLParam(r, "id"))
	s.respondTask(w, r, task, err)
}

func (s *Server) addChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req checklistRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	task, err := s.session.AddChecklistItem(r.Context(), chi.URLParam(r, "id"), req.Text)
	s.respondTask(w, r, task, err)
}

func (s *Server) toggleChecklistItem(w http.ResponseWriter, r *http.Request) {
	task, err := s.session.ToggleChecklistItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	s.respondTask(w, r, task, err)
}

func (s *Server) removeChecklistItem(w http.ResponseWriter, r *http.Request) {
	task, err := s.session.RemoveChecklistItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	s.respondTask(w, r, task, err)
}

func (s *Server) addAttachment(w http.ResponseWriter, r *http.Request) {
	var req attachmentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	task, err := s.session.AddAttachment(r.Context(), chi.URLParam(r, "id"), store.AttachmentInput{
		Type: req.Type,
		Name: req.Name,
		URL:  req.URL,
	})
	s.respondTask(w, r, task, err)
}

func (s *Server) removeAttachment(w http.ResponseWriter, r *http.Request) {
	task, err := s.session.RemoveAttachment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "attachmentID"))
	s.respondTask(w, r, task, err)
}

func (s *Server) respondTask(w http.ResponseWriter, r *http.Request, task model.Task, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warnw("request failed", "path", r.URL.Path, "error", err)
	writeError(w, err)
}

// filterFromRequest overlays query parameters onto base. The active
// filters themselves are left untouched.
// filterFromRequest overlays the query parameters on a copy of state and
// validates the result the same way a filters PATCH does.
func filterFromRequest(r *http.Request, state filter.State) (model.Filters, error) {
	values := r.URL.Query()
	var patch filter.FiltersPatch
	param := func(key string) *string {
		if !values.Has(key) {
			return nil
		}
		v := values.Get(key)
		return &v
	}
	patch.Search = param("q")
	patch.List = param("list")
	patch.Priority = param("priority")
	patch.SortBy = param("sort")
	patch.Timeframe = param("timeframe")
	patch.Status = param("status")
	if values.Has("important") {
		important, err := strconv.ParseBool(values.Get("important"))
		if err != nil {
			return model.Filters{}, store.NewValidationError("important", "Expected true or false")
		}
		patch.ImportantOnly = &important
	}
	if err := state.Apply(patch); err != nil {
		return model.Filters{}, err
	}
	return state.Filters, nil
}
