package lead

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akozyrev/leadwell/internal/audit"
	"github.com/akozyrev/leadwell/internal/auth"
	"github.com/akozyrev/leadwell/internal/conversion"
	"github.com/akozyrev/leadwell/internal/http/middleware"
	"github.com/akozyrev/leadwell/internal/http/respond"
	"github.com/akozyrev/leadwell/internal/importer"
	"github.com/akozyrev/leadwell/internal/lead"
	"github.com/akozyrev/leadwell/internal/money"
	"github.com/akozyrev/leadwell/internal/permission"
)

type Handler struct {
	svc       *lead.Service
	converter *conversion.Service
	parser    *importer.Parser
	perms     *permission.Manager
	audit     *audit.Logger
}

func NewHandler(
	svc *lead.Service,
	converter *conversion.Service,
	parser *importer.Parser,
	perms *permission.Manager,
	auditLog *audit.Logger,
) *Handler {
	return &Handler{
		svc:       svc,
		converter: converter,
		parser:    parser,
		perms:     perms,
		audit:     auditLog,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(middleware.RequirePermission(h.perms, "lead.create")).Post("/", h.create)
	r.With(middleware.RequirePermission(h.perms, "lead.create")).Post("/import", h.importCSV)
	r.With(middleware.RequirePermission(h.perms, "lead.read")).Get("/", h.list)
	r.With(middleware.RequirePermission(h.perms, "lead.read")).Get("/{id}", h.get)
	r.With(middleware.RequirePermission(h.perms, "lead.delete")).Delete("/{id}", h.delete)

	// Ownership-scoped updates check against the loaded entity.
	r.Patch("/{id}", h.update)
	r.Patch("/{id}/status", h.changeStatus)
	r.Patch("/{id}/assign", h.assign)
	r.Patch("/{id}/value", h.setEstimatedValue)
	r.Patch("/{id}/fields", h.setCustomField)
	r.Post("/{id}/notes", h.addNote)
	r.Post("/{id}/convert", h.convert)
}

type createLeadRequest struct {
	Title          string `json:"title"`
	ContactName    string `json:"contact_name"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	Company        string `json:"company"`
	Source         string `json:"source"`
	Medium         string `json:"medium"`
	Campaign       string `json:"campaign"`
	Priority       string `json:"priority"`
	EstimatedValue *int64 `json:"estimated_value"`
	Currency       string `json:"currency"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	params := lead.CreateParams{
		Title:        req.Title,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Company:      req.Company,
		Source:       lead.NewSource(req.Source, req.Medium, req.Campaign),
		Priority:     lead.Priority(req.Priority),
	}

	if req.EstimatedValue != nil {
		currency := req.Currency
		if currency == "" {
			currency = conversion.DefaultCurrency
		}

		value, err := money.New(*req.EstimatedValue, currency)
		if err != nil {
			respond.Error(w, err)
			return
		}

		params.EstimatedValue = &value
	}

	l, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(l))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		leads []*lead.Lead
		err   error
	)

	switch {
	case r.URL.Query().Get("status") != "":
		leads, err = h.svc.ListByStatus(ctx, lead.Status(r.URL.Query().Get("status")))
	case r.URL.Query().Get("email") != "":
		leads, err = h.svc.ListByEmail(ctx, r.URL.Query().Get("email"))
	default:
		leads, err = h.svc.List(ctx)
	}

	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(leads))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(l))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizeUpdate loads the lead and checks lead.update against it, so
// the "user" role's ownership-scoped grant works.
func (h *Handler) authorizeUpdate(w http.ResponseWriter, r *http.Request) (*lead.Lead, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return nil, false
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return nil, false
	}

	if !h.perms.IsGranted(auth.FromContext(r.Context()), "lead.update", l) {
		respond.JSON(w, http.StatusForbidden, map[string]string{"error": "permission denied: lead.update"})
		return nil, false
	}

	return l, true
}

type updateLeadRequest struct {
	Title       *string `json:"title,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Company     *string `json:"company,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	l, ok := h.authorizeUpdate(w, r)
	if !ok {
		return
	}

	var req updateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	l, err := h.svc.Update(r.Context(), l.ID, lead.UpdateParams{
		Title:       req.Title,
		ContactName: req.ContactName,
		Company:     req.Company,
		Priority:    req.Priority,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(l))
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	l, ok := h.authorizeUpdate(w, r)
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	l, err := h.svc.ChangeStatus(r.Context(), l.ID, lead.Status(req.Status))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(l))
}

type assignRequest struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	l, ok := h.authorizeUpdate(w, r)
	if !ok {
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	l, err := h.svc.Assign(r.Context(), l.ID, req.UserID, req.DisplayName)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(l))
}

type addNoteRequest struct {
	Text string `json:"text"`
}

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
	l, ok := h.authorizeUpdate(w, r)
	if !ok {
		return
	}

	var req addNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	author := lead.SystemAuthor
	if u := auth.FromContext(r.Context()); u != nil {
		author = u.FullName()
	}

	l, err := h.svc.AddNote(r.Context(), l.ID, req.Text, author)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(l))
}

type setValueRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (h *Handler) setEstimatedValue(w http.ResponseWriter, r *http.Request) {
	l, ok := h.authorizeUpdate(w, r)
	if !ok {
		return
	}

	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = conversion.DefaultCurrency
	}

	value, err := money.New(req.Amount, currency)
	if err != nil {
		respond.Error(w, err)
		return
	}

	l, err = h.svc.SetEstimatedValue(r.Context(), l.ID, value)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(l))
}

type setFieldRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (h *Handler) setCustomField(w http.ResponseWriter, r *http.Request) {
	l, ok := h.authorizeUpdate(w, r)
	if !ok {
		return
	}

	var req setFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if req.Key == "" {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "key is required"})
		return
	}

	l, err := h.svc.SetCustomField(r.Context(), l.ID, req.Key, req.Value)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(l))
}

type convertRequest struct {
	Title string `json:"title"`
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	l, ok := h.authorizeUpdate(w, r)
	if !ok {
		return
	}

	var req convertRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	d, err := h.converter.Convert(r.Context(), l.ID, conversion.Options{Title: req.Title})
	if err != nil {
		respond.Error(w, err)
		return
	}

	middleware.RecordLeadConversion()
	h.recordAudit(r, "lead.converted", l.ID, map[string]string{
		"deal_id":    d.ID.String(),
		"deal_title": d.Title,
	})

	respond.JSON(w, http.StatusCreated, map[string]any{
		"deal_id":    d.ID,
		"deal_title": d.Title,
		"amount":     toMoneyResponse(d.Amount),
		"stage":      d.Stage,
	})
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	result, err := h.parser.Parse(r.Body)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	created := make([]leadResponse, 0, len(result.Leads))

	for _, params := range result.Leads {
		l, err := h.svc.Create(r.Context(), params)
		if err != nil {
			respond.Error(w, err)
			return
		}

		created = append(created, toResponse(l))
	}

	middleware.RecordLeadImport(len(created))
	h.recordAudit(r, "lead.imported", uuid.Nil, map[string]string{
		"created": strconv.Itoa(len(created)),
		"skipped": strconv.Itoa(len(result.Skipped)),
	})

	respond.JSON(w, http.StatusCreated, map[string]any{
		"created": created,
		"skipped": result.Skipped,
	})
}

func (h *Handler) recordAudit(r *http.Request, action string, entityID uuid.UUID, data map[string]string) {
	if h.audit == nil {
		return
	}

	var userID *uuid.UUID
	if u := auth.FromContext(r.Context()); u != nil {
		userID = &u.ID
	}

	var entity *uuid.UUID
	if entityID != uuid.Nil {
		entity = &entityID
	}

	if err := h.audit.Record(action, userID, entity, data); err != nil {
		slog.Error("audit write failed", "action", action, "error", err)
	}
}
