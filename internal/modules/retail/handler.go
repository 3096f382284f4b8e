package retail

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nexatech/crm-backend/internal/httpx"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Handler exposes retail lead HTTP endpoints.
type Handler struct {
	service Service
	authn   func(http.Handler) http.Handler
}

func NewHandler(service Service, authn func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, authn: authn}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/retail", func(r chi.Router) {
		r.Use(h.authn)
		r.Post("/leads", h.createLead)                  // POST /api/retail/leads
		r.Post("/leads/assign", h.assignLead)           // POST /api/retail/leads/assign
		r.Post("/leads/status", h.updateStatus)         // POST /api/retail/leads/status
		r.Get("/leads", h.listLeads)                    // GET  /api/retail/leads?assigned_to=me&status=New
		r.Get("/leads/{id}", h.getLead)                 // GET  /api/retail/leads/{id}
		r.Get("/leads/{id}/transfers", h.listTransfers) // GET  /api/retail/leads/{id}/transfers
	})
}

func (h *Handler) createLead(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	leadID, err := h.service.Create(r.Context(), p, req)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"lead_id": leadID})
}

func (h *Handler) assignLead(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.service.Assign(r.Context(), p, req)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.UpdateStatus(r.Context(), p, req); err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) listLeads(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	q := r.URL.Query()

	filter := ListFilter{
		Source: q.Get("source"),
		Query:  q.Get("q"),
	}
	var err error
	if filter.AssignedTo, err = employeeParam(q.Get("assigned_to"), p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid assigned_to")
		return
	}
	if filter.CreatedBy, err = employeeParam(q.Get("created_by"), p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid created_by")
		return
	}
	if filter.AssignedBy, err = employeeParam(q.Get("assigned_by"), p); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid assigned_by")
		return
	}
	if v := q.Get("status"); v != "" {
		status, ok := ParseStatus(v)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid status: "+v)
			return
		}
		filter.Status = &status
	}
	if v := q.Get("domain"); v != "" {
		domain, ok := identity.ParseCategory(v)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid domain: "+v)
			return
		}
		filter.Domain = &domain
	}
	if filter.DateFrom, err = dateParam(q.Get("date_from")); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid date_from")
		return
	}
	if filter.DateTo, err = dateParam(q.Get("date_to")); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid date_to")
		return
	}
	filter.UnassignedOnly = q.Get("unassigned") != ""
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	page, err := h.service.List(r.Context(), p, filter)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) getLead(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	leadID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid lead id")
		return
	}
	detail, err := h.service.GetOne(r.Context(), p, leadID)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	leadID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid lead id")
		return
	}
	transfers, err := h.service.ListTransfers(r.Context(), p, leadID)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	if transfers == nil {
		transfers = []*Transfer{}
	}
	httpx.JSON(w, http.StatusOK, transfers)
}

// employeeParam resolves an employee id filter, accepting the "me" sentinel.
func employeeParam(v string, p identity.Principal) (*int64, error) {
	if v == "" {
		return nil, nil
	}
	if v == "me" {
		id := p.EmployeeID
		return &id, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func dateParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
