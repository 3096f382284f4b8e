package employee

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nexatech/crm-backend/internal/httpx"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Handler exposes the employee and store directory.
type Handler struct {
	service Service
	authn   func(http.Handler) http.Handler
}

func NewHandler(service Service, authn func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, authn: authn}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/employees", func(r chi.Router) {
		r.Use(h.authn)
		r.Use(identity.RequireRole(
			identity.RoleLaptopManager, identity.RolePCManager, identity.RoleCorporateManager))
		r.Get("/", h.listEmployees) // GET /api/employees?sales_only=1&store_id=2&q=anita
	})
	r.Get("/api/stores", h.listStores) // GET /api/stores (public)
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		SalesOnly: r.URL.Query().Get("sales_only") != "",
		Query:     r.URL.Query().Get("q"),
	}
	if v := r.URL.Query().Get("store_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid store_id")
			return
		}
		filter.StoreID = &id
	}
	employees, err := h.service.ListEmployees(r.Context(), filter)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employees)
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.ListStores(r.Context())
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stores)
}
