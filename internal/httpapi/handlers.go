package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dshills/orderdesk/internal/actionlog"
	"github.com/dshills/orderdesk/internal/report"
	"github.com/dshills/orderdesk/internal/service"
	"github.com/dshills/orderdesk/pkg/types"
)

// Handler serves the REST endpoints on top of the service layer
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a Handler for svc
func NewHandler(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, now: time.Now}
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type productRequest struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
}

type addItemRequest struct {
	Product  string `json:"product"`
	Quantity *int   `json:"quantity"` // omitted means 1
}

type saveRequest struct {
	CustomerID int64  `json:"customer_id"`
	Date       string `json:"date"`
}

type exportRequest struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	CustomerID int64    `json:"customer_id"`
	Formats    []string `json:"formats"`
}

type exportResponse struct {
	Files []string `json:"files"`
}

type summaryResponse struct {
	Summary  string `json:"summary"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Cached   bool   `json:"cached"`
}

type historyResponse struct {
	Entries []string `json:"entries"`
}

// customers

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	c, err := h.svc.CreateCustomer(r.Context(), types.Customer{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusCreated, c)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	c, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, c)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	var req customerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	c, err := h.svc.UpdateCustomer(r.Context(), types.Customer{ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// products

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), req.Name, req.UnitPrice)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), id, req.Name, req.UnitPrice)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// orders

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	orders, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	if err := h.svc.DeleteOrder(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) editOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}
	v, err := h.svc.EditOrder(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusCreated, v)
}

// drafts

func (h *Handler) startOrder(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusCreated, h.svc.StartOrder())
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Draft(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, v)
}

func (h *Handler) discardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DiscardDraft(chi.URLParam(r, "id")); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	v, err := h.svc.AddItem(r.Context(), chi.URLParam(r, "id"), req.Product, quantity)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, v)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, fmt.Errorf("%w: index must be an integer", errBadRequest))
		return
	}
	v, err := h.svc.RemoveItem(chi.URLParam(r, "id"), index)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, v)
}

func (h *Handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Date == "" {
		req.Date = h.now().Format(types.DateLayout)
	}
	o, err := h.svc.SaveDraft(r.Context(), chi.URLParam(r, "id"), req.CustomerID, req.Date)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, o)
}

// reports

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Dashboard(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, m)
}

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}
	filter := report.Filter{From: req.From, To: req.To, CustomerID: req.CustomerID}
	files, err := h.svc.ExportReport(r.Context(), filter, req.Formats, "")
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusCreated, exportResponse{Files: files})
}

func (h *Handler) summarize(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	s, err := h.svc.SummarizeOrders(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, summaryResponse{Summary: s.Text, Provider: s.Provider, Model: s.Model, Cached: s.Cached})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		WriteError(w, err)
		return
	}
	entries, err := h.svc.History(limit)
	if err != nil && !errors.Is(err, actionlog.ErrNoHistory) {
		WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []string{}
	}
	WriteSuccess(w, http.StatusOK, historyResponse{Entries: entries})
}
