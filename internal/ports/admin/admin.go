// Package admin serves a small read-only HTTP view of the lobby plus invite issuing.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"dutch/internal/app"
)

// Registry is the part of the lobby the admin surface reads.
type Registry interface {
	Tables() []app.TableInfo
	Table(code string) (*app.Table, bool)
	Clients() int
}

type handler struct {
	lobby   Registry
	invites *app.InviteService
	log     *zap.Logger
	started time.Time
}

// NewRouter mounts the admin routes. invites may be nil, which disables the invite endpoint.
func NewRouter(lobby Registry, invites *app.InviteService, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handler{lobby: lobby, invites: invites, log: log, started: time.Now()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", h.health)
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.listTables)
		r.Get("/{code}", h.getTable)
		r.Post("/{code}/invite", h.invite)
	})
	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("admin request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Clients int    `json:"clients"`
	Tables  int    `json:"tables"`
	Uptime  string `json:"uptime"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		OK:      true,
		Clients: h.lobby.Clients(),
		Tables:  len(h.lobby.Tables()),
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables := h.lobby.Tables()
	if r.URL.Query().Get("open") == "true" {
		open := tables[:0]
		for _, t := range tables {
			if t.Open() && !t.Private {
				open = append(open, t)
			}
		}
		tables = open
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *handler) getTable(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lobby.Table(chi.URLParam(r, "code"))
	if !ok {
		writeError(w, http.StatusNotFound, "table not found")
		return
	}
	writeJSON(w, http.StatusOK, t.Info())
}

type inviteRequest struct {
	From string `json:"from"`
}

type inviteResponse struct {
	Code  string `json:"code"`
	Token string `json:"token"`
}

func (h *handler) invite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if _, ok := h.lobby.Table(code); !ok {
		writeError(w, http.StatusNotFound, "table not found")
		return
	}
	var req inviteRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	if req.From == "" {
		req.From = "admin"
	}

	token, err := h.invites.Issue(code, req.From)
	if errors.Is(err, app.ErrInvitesDisabled) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		h.log.Error("issue invite", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not issue invite")
		return
	}
	writeJSON(w, http.StatusCreated, inviteResponse{Code: code, Token: token})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
