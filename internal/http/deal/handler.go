package deal

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/audit"
	"github.com/akozyrev/leadwell/internal/auth"
	"github.com/akozyrev/leadwell/internal/conversion"
	"github.com/akozyrev/leadwell/internal/deal"
	"github.com/akozyrev/leadwell/internal/http/middleware"
	"github.com/akozyrev/leadwell/internal/http/respond"
	"github.com/akozyrev/leadwell/internal/money"
	"github.com/akozyrev/leadwell/internal/permission"
)

type Handler struct {
	svc   *deal.Service
	perms *permission.Manager
	audit *audit.Logger
}

func NewHandler(svc *deal.Service, perms *permission.Manager, auditLog *audit.Logger) *Handler {
	return &Handler{svc: svc, perms: perms, audit: auditLog}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(middleware.RequirePermission(h.perms, "deal.create")).Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/stage", h.updateStage)
	r.Patch("/{id}/probability", h.setProbability)
	r.Patch("/{id}/amount", h.updateAmount)
	r.Post("/{id}/close", h.close)
	r.Post("/{id}/items", h.addLineItem)
}

type createDealRequest struct {
	Title    string     `json:"title"`
	Amount   int64      `json:"amount"`
	Currency string     `json:"currency"`
	OwnerID  *uuid.UUID `json:"owner_id"`
	LeadID   *uuid.UUID `json:"lead_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = conversion.DefaultCurrency
	}

	amount, err := money.New(req.Amount, currency)
	if err != nil {
		respond.Error(w, err)
		return
	}

	// Default owner is the caller.
	ownerID := uuid.Nil
	if u := auth.FromContext(r.Context()); u != nil {
		ownerID = u.ID
	}
	if req.OwnerID != nil {
		ownerID = *req.OwnerID
	}

	d, err := h.svc.Create(r.Context(), deal.CreateParams{
		Title:   req.Title,
		Amount:  amount,
		OwnerID: ownerID,
		LeadID:  req.LeadID,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(d))
}

// list honors the deal.read.own scoping: a user without the unscoped
// grant only sees their own deals.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := auth.FromContext(ctx)

	if leadID := r.URL.Query().Get("lead_id"); leadID != "" {
		id, err := uuid.Parse(leadID)
		if err != nil {
			respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead_id"})
			return
		}

		deals, err := h.svc.ListByLead(ctx, id)
		if err != nil {
			respond.Error(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toResponseList(deals))

		return
	}

	if h.perms.IsGranted(u, "deal.read", nil) {
		deals, err := h.svc.List(ctx)
		if err != nil {
			respond.Error(w, err)
			return
		}

		respond.JSON(w, http.StatusOK, toResponseList(deals))

		return
	}

	if u == nil {
		respond.JSON(w, http.StatusForbidden, map[string]string{"error": "permission denied: deal.read"})
		return
	}

	deals, err := h.svc.ListByOwner(ctx, u.ID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(deals))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, ok := h.authorize(w, r, "deal.read")
	if !ok {
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(d))
}

// authorize loads the deal and checks the permission against it, so
// ownership-scoped grants work.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, perm string) (*deal.Deal, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return nil, false
	}

	if !h.perms.IsGranted(auth.FromContext(r.Context()), perm, d) {
		respond.JSON(w, http.StatusForbidden, map[string]string{"error": "permission denied: " + perm})
		return nil, false
	}

	return d, true
}

type updateStageRequest struct {
	Stage string `json:"stage"`
}

func (h *Handler) updateStage(w http.ResponseWriter, r *http.Request) {
	d, ok := h.authorize(w, r, "deal.update")
	if !ok {
		return
	}

	var req updateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	d, err := h.svc.UpdateStage(r.Context(), d.ID, deal.Stage(req.Stage))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(d))
}

type setProbabilityRequest struct {
	Probability int `json:"probability"`
}

func (h *Handler) setProbability(w http.ResponseWriter, r *http.Request) {
	d, ok := h.authorize(w, r, "deal.update")
	if !ok {
		return
	}

	var req setProbabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	d, err := h.svc.SetProbability(r.Context(), d.ID, req.Probability)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(d))
}

type updateAmountRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (h *Handler) updateAmount(w http.ResponseWriter, r *http.Request) {
	d, ok := h.authorize(w, r, "deal.update")
	if !ok {
		return
	}

	var req updateAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = d.Amount.Currency()
	}

	amount, err := money.New(req.Amount, currency)
	if err != nil {
		respond.Error(w, err)
		return
	}

	d, err = h.svc.UpdateAmount(r.Context(), d.ID, amount)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(d))
}

type closeRequest struct {
	Won    bool   `json:"won"`
	Reason string `json:"reason"`
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	d, ok := h.authorize(w, r, "deal.update")
	if !ok {
		return
	}

	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	d, err := h.svc.Close(r.Context(), d.ID, req.Won, req.Reason)
	if err != nil {
		respond.Error(w, err)
		return
	}

	middleware.RecordDealClose(req.Won)
	h.recordAudit(r, "deal.closed", d.ID, map[string]string{
		"won":    boolString(req.Won),
		"reason": req.Reason,
	})

	respond.JSON(w, http.StatusOK, toResponse(d))
}

type addLineItemRequest struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Currency    string `json:"currency"`
}

func (h *Handler) addLineItem(w http.ResponseWriter, r *http.Request) {
	d, ok := h.authorize(w, r, "deal.update")
	if !ok {
		return
	}

	var req addLineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = d.Amount.Currency()
	}

	unitPrice, err := money.New(req.UnitPrice, currency)
	if err != nil {
		respond.Error(w, err)
		return
	}

	d, err = h.svc.AddLineItem(r.Context(), d.ID, req.Description, req.Quantity, unitPrice)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(d))
}

func (h *Handler) recordAudit(r *http.Request, action string, entityID uuid.UUID, data map[string]string) {
	if h.audit == nil {
		return
	}

	var userID *uuid.UUID
	if u := auth.FromContext(r.Context()); u != nil {
		userID = &u.ID
	}

	if err := h.audit.Record(action, userID, &entityID, data); err != nil {
		slog.Error("audit write failed", "action", action, "error", err)
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}

	return "false"
}
