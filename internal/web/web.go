package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Joseda-hg/taskdeck/internal/app"
	"github.com/Joseda-hg/taskdeck/internal/model"
	"github.com/Joseda-hg/taskdeck/internal/store"
)

type Server struct {
	session *app.Session
	logger  *zap.SugaredLogger
}

func NewServer(session *app.Session, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{session: session, logger: logger}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/priorities", s.priorities)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.listTasks)
			r.Post("/", s.createTask)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getTask)
				r.Patch("/", s.updateTask)
				r.Delete("/", s.purgeTask)
				r.Get("/history", s.taskHistory)
				r.Post("/complete", s.toggleComplete)
				r.Post("/important", s.toggleImportant)
				r.Post("/trash", s.trashTask)
				r.Post("/restore", s.restoreTask)
				r.Post("/checklist", s.addChecklistItem)
				r.Post("/checklist/{itemID}/toggle", s.toggleChecklistItem)
				r.Delete("/checklist/{itemID}", s.removeChecklistItem)
				r.Post("/attachments", s.addAttachment)
				r.Delete("/attachments/{attachmentID}", s.removeAttachment)
			})
		})

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", s.listLists)
			r.Post("/", s.createList)
			r.Patch("/{id}", s.updateList)
			r.Delete("/{id}", s.deleteList)
		})

		r.Get("/search", s.search)
		r.Get("/matrix", s.matrix)
		r.Get("/calendar", s.calendar)
		r.Get("/stats", s.stats)
		r.Get("/trash", s.trash)

		r.Get("/filters", s.getFilters)
		r.Patch("/filters", s.patchFilters)
		r.Post("/filters/reset", s.resetFilters)
		r.Get("/settings", s.getSettings)
		r.Patch("/settings", s.patchSettings)
	})

	return r
}

func requestLogger(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Infow("request",
				"requestID", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"latency", time.Since(start).String(),
			)
		})
	}
}

func (s *Server) priorities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.Priorities())
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	if fields, ok := store.FieldErrors(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: fields})
		return
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, store.ErrReservedList):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

// parseDate accepts RFC3339 or a bare date, which is read in loc.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed, nil
	}
	return time.ParseInLocation("2006-01-02", trimmed, loc)
}
