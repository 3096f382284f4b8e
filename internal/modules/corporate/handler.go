package corporate

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nexatech/crm-backend/internal/httpx"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Handler exposes corporate lead HTTP endpoints. Every route requires the
// corporate_manager role.
type Handler struct {
	service Service
	authn   func(http.Handler) http.Handler
}

func NewHandler(service Service, authn func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, authn: authn}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/corporate", func(r chi.Router) {
		r.Use(h.authn)
		r.Use(identity.RequireRole(identity.RoleCorporateManager))
		r.Post("/leads", h.createLead)                        // POST /api/corporate/leads
		r.Get("/leads", h.listLeads)                          // GET  /api/corporate/leads?status=Discovery&q=acme
		r.Get("/leads/{id}", h.getLead)                       // GET  /api/corporate/leads/{id}
		r.Put("/leads", h.updateLead)                         // PUT  /api/corporate/leads
		r.Post("/leads/items", h.addItem)                     // POST /api/corporate/leads/items
		r.Put("/leads/items", h.updateItem)                   // PUT  /api/corporate/leads/items
		r.Post("/leads/close", h.closeLead)                   // POST /api/corporate/leads/close
		r.Get("/history/{leadId}", h.listHistory)             // GET  /api/corporate/history/{leadId}
		r.Get("/reminders", h.listReminders)                  // GET  /api/corporate/reminders?window_days=14&due_only=1
		r.Post("/reminders/ack", h.ackReminder)               // POST /api/corporate/reminders/ack
		r.Post("/leads/quotes", h.addQuote)                   // POST /api/corporate/leads/quotes
		r.Get("/leads/{id}/quotes", h.listQuotes)             // GET  /api/corporate/leads/{id}/quotes
		r.Post("/leads/proposals/upload", h.uploadProposal)   // POST /api/corporate/leads/proposals/upload
		r.Get("/leads/proposals/{leadId}", h.listProposals)   // GET  /api/corporate/leads/proposals/{leadId}
	})
}

func (h *Handler) createLead(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	lead, err := h.service.Create(r.Context(), p, req)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lead)
}

func (h *Handler) listLeads(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	q := r.URL.Query()

	filter := ListFilter{Query: q.Get("q")}
	if v := q.Get("status"); v != "" {
		status, ok := ParseStatus(v)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid status: "+v)
			return
		}
		filter.Status = &status
	}
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
	lead, err := h.service.GetOne(r.Context(), p, leadID)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

func (h *Handler) updateLead(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	lead, err := h.service.Update(r.Context(), p, req)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.service.AddItem(r.Context(), p, req)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, err := h.service.UpdateItem(r.Context(), p, req)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) closeLead(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req CloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.service.Close(r.Context(), p, req); err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	leadID, err := strconv.ParseInt(chi.URLParam(r, "leadId"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid lead id")
		return
	}
	history, err := h.service.ListHistory(r.Context(), p, leadID)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

func (h *Handler) listReminders(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	q := r.URL.Query()
	windowDays, _ := strconv.Atoi(q.Get("window_days"))
	dueOnly := q.Get("due_only") != ""

	reminders, err := h.service.ListReminders(r.Context(), p, windowDays, dueOnly)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reminders)
}

func (h *Handler) ackReminder(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req struct {
		ReminderID int64 `json:"reminder_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	outcome, err := h.service.AckReminder(r.Context(), p, req.ReminderID)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{
		"ok":           true,
		"already_done": outcome.AlreadyDone,
		"respawned":    outcome.Respawned,
	})
}

func (h *Handler) addQuote(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	var req AddQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := h.service.AddQuote(r.Context(), p, req)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	leadID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid lead id")
		return
	}
	quotes, err := h.service.ListQuotes(r.Context(), p, leadID)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotes)
}

func (h *Handler) uploadProposal(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxProposalBytes+1<<20)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	leadID, err := strconv.ParseInt(r.FormValue("corporate_lead_id"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid corporate_lead_id")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	doc, err := h.service.UploadProposal(r.Context(), p, leadID, header.Filename, mimeType, header.Size, file)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) listProposals(w http.ResponseWriter, r *http.Request) {
	p, _ := identity.FromContext(r.Context())
	leadID, err := strconv.ParseInt(chi.URLParam(r, "leadId"), 10, 64)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid lead id")
		return
	}
	docs, err := h.service.ListProposals(r.Context(), p, leadID)
	if err != nil {
		httpx.Err(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}
