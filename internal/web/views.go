package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Joseda-hg/taskdeck/internal/filter"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

type listRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type listPatchRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type filtersRequest struct {
	View          *string `json:"view"`
	Priority      *string `json:"priority"`
	Search        *string `json:"search"`
	SortBy        *string `json:"sort_by"`
	Timeframe     *string `json:"timeframe"`
	List          *string `json:"list"`
	Status        *string `json:"status"`
	ImportantOnly *bool   `json:"important_only"`
}

type profileRequest struct {
	DisplayName  *string `json:"display_name"`
	Bio          *string `json:"bio"`
	AvatarURL    *string `json:"avatar_url"`
	Timezone     *string `json:"timezone"`
	PhoneNumber  *string `json:"phone_number"`
	Organization *string `json:"organization"`
	Position     *string `json:"position"`
}

type settingsRequest struct {
	Theme         *string              `json:"theme"`
	Language      *string              `json:"language"`
	DateFormat    *string              `json:"date_format"`
	TimeFormat    *string              `json:"time_format"`
	StartOfWeek   *string              `json:"start_of_week"`
	Notifications *model.Notifications `json:"notifications"`
	Profile       *profileRequest      `json:"profile"`
	TaskDefaults  *model.TaskDefaults  `json:"task_defaults"`
}

func (req settingsRequest) toPatch() filter.SettingsPatch {
	patch := filter.SettingsPatch{
		Theme:         req.Theme,
		Language:      req.Language,
		DateFormat:    req.DateFormat,
		TimeFormat:    req.TimeFormat,
		StartOfWeek:   req.StartOfWeek,
		Notifications: req.Notifications,
		TaskDefaults:  req.TaskDefaults,
	}
	if p := req.Profile; p != nil {
		patch.Profile = &filter.ProfilePatch{
			DisplayName:  p.DisplayName,
			Bio:          p.Bio,
			AvatarURL:    p.AvatarURL,
			Timezone:     p.Timezone,
			PhoneNumber:  p.PhoneNumber,
			Organization: p.Organization,
			Position:     p.Position,
		}
	}
	return patch
}

func (s *Server) listLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.session.Lists()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) createList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	list, err := s.session.CreateList(r.Context(), store.ListInput{ID: req.ID, Name: req.Name, Color: req.Color, Icon: req.Icon})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) updateList(w http.ResponseWriter, r *http.Request) {
	var req listPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	list, err := s.session.UpdateList(r.Context(), chi.URLParam(r, "id"), store.ListPatch{Name: req.Name, Color: req.Color, Icon: req.Icon})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) deleteList(w http.ResponseWriter, r *http.Request) {
	moved, err := s.session.DeleteList(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"moved_tasks": moved})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			badRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	results, err := s.session.Search(r.URL.Query().Get("q"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) matrix(w http.ResponseWriter, r *http.Request) {
	quadrants, err := s.session.Matrix()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quadrants)
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	loc := s.session.State().Settings.Location()
	from, err := parseDate(r.URL.Query().Get("from"), loc)
	if err != nil {
		badRequest(w, "invalid from date")
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"), loc)
	if err != nil {
		badRequest(w, "invalid to date")
		return
	}
	events, err := s.session.Calendar(from, to)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.session.Stats()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) trash(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.session.Trash()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) getFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.State().Filters)
}

func (s *Server) patchFilters(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	filters, err := s.session.ApplyFilters(r.Context(), filter.FiltersPatch{
		View:          req.View,
		Priority:      req.Priority,
		Search:        req.Search,
		SortBy:        req.SortBy,
		Timeframe:     req.Timeframe,
		List:          req.List,
		Status:        req.Status,
		ImportantOnly: req.ImportantOnly,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

func (s *Server) resetFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := s.session.ResetFilters(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.State().Settings)
}

func (s *Server) patchSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	settings, err := s.session.UpdateSettings(r.Context(), req.toPatch())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
