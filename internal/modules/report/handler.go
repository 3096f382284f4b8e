package report

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nexatech/crm-backend/internal/httpx"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Handler exposes analytics and export HTTP endpoints.
type Handler struct {
	service Service
	authn   func(http.Handler) http.Handler
}

func NewHandler(service Service, authn func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, authn: authn}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/analytics", func(r chi.Router) {
		r.Use(h.authn)
		r.Get("/retail/status", h.retailStatus)          // GET /api/analytics/retail/status?scope=me|domain
		r.Get("/retail/team-workload", h.teamWorkload)   // GET /api/analytics/retail/team-workload
		r.Get("/retail/performance", h.salesPerformance) // GET /api/analytics/retail/performance?period=month|quarter
		r.Get("/corporate/summary", h.corporateSummary)  // GET /api/analytics/corporate/summary
	})
	r.Route("/api/mgr", func(r chi.Router) {
		r.Use(h.authn)
		r.Get("/export", h.exportLeads) // GET /api/mgr/export
	})
}

func (h *Handler) retailStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	mix, err := h.service.RetailStatusMix(r.Context(), p, r.URL.Query().Get("scope"))
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, mix)
}

func (h *Handler) teamWorkload(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	workload, err := h.service.TeamWorkload(r.Context(), p)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, workload)
}

func (h *Handler) salesPerformance(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	perf, err := h.service.SalesPerformance(r.Context(), p, r.URL.Query().Get("period"))
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perf)
}

func (h *Handler) corporateSummary(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	summary, err := h.service.CorporateSummary(r.Context(), p)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) exportLeads(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())

	// Build the workbook in memory so a failure can still return a clean
	// error response.
	var buf bytes.Buffer
	if err := h.service.ExportLeads(r.Context(), p, &buf); err != nil {
		httpx.Err(w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="manager_leads.xlsx"`)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Write(buf.Bytes())
}
