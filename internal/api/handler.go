package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/productflow/internal/catalog"
	"github.com/gyaneshwarpardhi/productflow/internal/input"
	"github.com/gyaneshwarpardhi/productflow/internal/session"
)

// CatalogStore is the catalog surface the API needs. *catalog.Store satisfies it.
type CatalogStore interface {
	Filter(expr string) ([]catalog.Item, error)
	Reload(ctx context.Context) (int, error)
	Status() catalog.Status
}

// Options holds the handler's dependencies.
type Options struct {
	Sessions       *session.Manager
	Catalog        CatalogStore
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	sessions *session.Manager
	catalog  CatalogStore
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// New creates an HTTP handler and registers all routes.
func New(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	h := &Handler{
		sessions: opts.Sessions,
		catalog:  opts.Catalog,
		log:      opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(loggingMiddleware(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.createSession)
			r.Get("/", h.listSessions)
			r.Get("/{sessionID}", h.getSession)
			r.Delete("/{sessionID}", h.closeSession)
			r.Post("/{sessionID}/events", h.dispatchEvent)
			r.Get("/{sessionID}/ws", h.streamSession)
		})
		r.Get("/catalog", h.listCatalog)
		r.Post("/catalog/reload", h.reloadCatalog)
	})
	return r
}

// POST /v1/sessions: open an editor session.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeErr(w, err)
		return
	}
	s, err := h.sessions.Create(session.CreateOptions{DarkMode: req.DarkMode})
	if err != nil {
		writeErr(w, err)
		return
	}
	st, err := s.State(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    s.ID(),
		"state": st,
	})
}

// GET /v1/sessions: list open session ids.
func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": h.sessions.IDs(),
	})
}

// GET /v1/sessions/{id}: current scene and history flags.
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	st, err := s.State(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         s.ID(),
		"created_at": s.CreatedAt(),
		"state":      st,
	})
}

// DELETE /v1/sessions/{id}
func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sessionID")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/sessions/{id}/events: apply one input event synchronously.
func (h *Handler) dispatchEvent(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	var ev input.Event
	if err := decodeJSON(r, &ev, false); err != nil {
		writeErr(w, err)
		return
	}
	ev.ReceivedAt = time.Now()

	res, err := s.Dispatch(r.Context(), &ev)
	if err != nil {
		writeErr(w, err)
		return
	}
	status := http.StatusOK
	if res.Err() != nil {
		status = statusFor(res.Err())
	}
	writeJSON(w, status, res)
}

// GET /v1/catalog?filter=: sidebar product list.
func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request) {
	q := catalogQuery{Filter: r.URL.Query().Get("filter")}
	if err := validateRequest(&q); err != nil {
		writeErr(w, err)
		return
	}
	items, err := h.catalog.Filter(q.Filter)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": items,
		"total":    len(items),
		"status":   h.catalog.Status(),
	})
}

// POST /v1/catalog/reload: refetch the catalog now.
func (h *Handler) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalog.Reload(r.Context())
	if err != nil {
		h.log.Error("catalog reload failed", "err", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"items":    n,
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 once no more sessions can be opened. An empty catalog
// is reported but does not make the service unready.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	open := h.sessions.Count()
	limit := h.sessions.Settings().MaxSessions
	body := map[string]interface{}{
		"status":   "ready",
		"sessions": open,
		"catalog":  h.catalog.Status(),
	}
	if limit > 0 && open >= limit {
		body["status"] = "at_capacity"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
