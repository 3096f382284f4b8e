package reminder

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nexatech/crm-backend/internal/httpx"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Handler exposes retail reminder HTTP endpoints. Corporate reminders live
// under the corporate routes.
type Handler struct {
	service Service
	authn   func(http.Handler) http.Handler
}

func NewHandler(service Service, authn func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, authn: authn}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/reminders", func(r chi.Router) {
		r.Use(h.authn)
		r.Get("/retail", h.listRetail)       // GET  /api/reminders/retail
		r.Post("/retail/done", h.markDone)   // POST /api/reminders/retail/done
	})
}

func (h *Handler) listRetail(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	reminders, err := h.service.ListRetail(r.Context(), p)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reminders)
}

func (h *Handler) markDone(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req struct {
		ReminderID int64 `json:"reminder_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.MarkDone(r.Context(), p, req.ReminderID); err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
