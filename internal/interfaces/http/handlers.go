package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/studioware/backoffice/internal/billing"
	"github.com/studioware/backoffice/internal/cache"
	"github.com/studioware/backoffice/internal/domain/lifecycle"
	"github.com/studioware/backoffice/internal/email"
	"github.com/studioware/backoffice/internal/export"
	"github.com/studioware/backoffice/internal/pdf"
	"github.com/studioware/backoffice/internal/persistence"
	"github.com/studioware/backoffice/internal/repository"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	coordinator *persistence.Coordinator
	customers   *repository.CustomerRepository
	emailLog    *repository.EmailLogRepository
	sender      *email.Sender
	pdfGen      *pdf.Generator
	exporter    *export.ExcelExporter
	logger      Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	coordinator *persistence.Coordinator,
	customers *repository.CustomerRepository,
	emailLog *repository.EmailLogRepository,
	sender *email.Sender,
	pdfGen *pdf.Generator,
	exporter *export.ExcelExporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		coordinator: coordinator,
		customers:   customers,
		emailLog:    emailLog,
		sender:      sender,
		pdfGen:      pdfGen,
		exporter:    exporter,
		logger:      logger,
	}
}

// Response represents a standard JSON response. Warning carries the degraded
// outcomes of the dual-write scheme: the call succeeded but not everywhere.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
	Error   string      `json:"error,omitempty"`
}

const dateFormat = "2006-01-02"

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// --- Customers ---

// CustomerRequest is the typed payload for creating or updating a customer.
type CustomerRequest struct {
	ID         string `json:"id"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// ListCustomers handles GET /api/admin/customers
func (h *Handlers) ListCustomers(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: customers})
}

// SaveCustomer handles POST /api/admin/customers
func (h *Handlers) SaveCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	customer := billing.Customer{
		ID:         req.ID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}

	if err := h.customers.Upsert(c.Request.Context(), nil, &customer); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: customer})
}

// DeleteCustomer handles DELETE /api/admin/customers/:id
func (h *Handlers) DeleteCustomer(c *gin.Context) {
	if err := h.customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// --- Documents ---

// LineItemRequest is one billable row in a document payload.
type LineItemRequest struct {
	ID                 string  `json:"id"`
	Description        string  `json:"description"`
	Quantity           float64 `json:"quantity"`
	UnitPrice          float64 `json:"unit_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

// DocumentRequest is the typed payload for saving a document. Derived amounts
// are never accepted from the client; they are recomputed on save.
type DocumentRequest struct {
	ID                 string            `json:"id"`
	Kind               string            `json:"kind" binding:"required"`
	Number             string            `json:"number"`
	ProjectName        string            `json:"project_name"`
	IssueDate          string            `json:"issue_date"`
	DueDate            string            `json:"due_date"`
	Customer           CustomerRequest   `json:"customer"`
	Items              []LineItemRequest `json:"items" binding:"required"`
	AdditionalDiscount float64           `json:"additional_discount"`
	Notes              string            `json:"notes"`
	Terms              string            `json:"terms"`
	Status             string            `json:"status"`
}

func (h *Handlers) buildDocument(c *gin.Context, req *DocumentRequest) (*billing.Document, bool) {
	kind := billing.Kind(req.Kind)
	if !kind.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "kind must be invoice or quote"})
		return nil, false
	}
	status := lifecycle.State(req.Status)
	if req.Status == "" {
		status = lifecycle.StateDraft
	}
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown status: " + req.Status})
		return nil, false
	}
	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "at least one line item is required"})
		return nil, false
	}

	now := time.Now()
	issueDate := now
	if req.IssueDate != "" {
		parsed, err := time.Parse(dateFormat, req.IssueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "issue_date must be YYYY-MM-DD"})
			return nil, false
		}
		issueDate = parsed
	}
	dueDate := issueDate.AddDate(0, 0, billing.DefaultDueDays)
	if req.DueDate != "" {
		parsed, err := time.Parse(dateFormat, req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "due_date must be YYYY-MM-DD"})
			return nil, false
		}
		dueDate = parsed
	}

	doc := &billing.Document{
		ID:          req.ID,
		Kind:        kind,
		Number:      req.Number,
		ProjectName: req.ProjectName,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		CustomerID:  req.Customer.ID,
		Customer: billing.Customer{
			ID:         req.Customer.ID,
			Name:       req.Customer.Name,
			Email:      req.Customer.Email,
			Phone:      req.Customer.Phone,
			Address:    req.Customer.Address,
			City:       req.Customer.City,
			PostalCode: req.Customer.PostalCode,
			Country:    req.Customer.Country,
		},
		AdditionalDiscount: req.AdditionalDiscount,
		Notes:              req.Notes,
		Terms:              req.Terms,
		Status:             status,
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Number == "" {
		numbers, err := h.coordinator.Numbers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
			return nil, false
		}
		doc.Number = billing.NextDocumentNumber(numbers, now)
	}
	for _, item := range req.Items {
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		doc.Items = append(doc.Items, billing.LineItem{
			ID:                 id,
			Description:        item.Description,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
		})
	}
	return doc, true
}

// ListDocuments handles GET /api/admin/documents?kind=&status=
func (h *Handlers) ListDocuments(c *gin.Context) {
	kind := billing.Kind(c.Query("kind"))
	if kind != "" && !kind.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "kind must be invoice or quote"})
		return
	}
	docs, err := h.coordinator.List(c.Request.Context(), kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	if status := c.Query("status"); status != "" {
		filtered := docs[:0]
		for _, doc := range docs {
			if string(doc.Status) == status {
				filtered = append(filtered, doc)
			}
		}
		docs = filtered
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: docs})
}

// GetDocument handles GET /api/admin/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	doc, err := h.coordinator.Get(c.Request.Context(), c.Param("id"))
	if err == cache.ErrNotFound {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "document not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: doc})
}

// NextDocumentNumber handles GET /api/admin/documents/next-number
func (h *Handlers) NextDocumentNumber(c *gin.Context) {
	numbers, err := h.coordinator.Numbers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"number": billing.NextDocumentNumber(numbers, time.Now())},
	})
}

// SaveDocument handles POST /api/admin/documents
func (h *Handlers) SaveDocument(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	doc, ok := h.buildDocument(c, &req)
	if !ok {
		return
	}

	outcome, err := h.coordinator.Save(c.Request.Context(), doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	resp := Response{Success: true, Data: doc}
	if outcome.Degraded {
		resp.Warning = "saved locally only; durable store unavailable: " + outcome.DurableErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteDocument handles DELETE /api/admin/documents/:id
func (h *Handlers) DeleteDocument(c *gin.Context) {
	outcome, err := h.coordinator.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	resp := Response{Success: true}
	if outcome.RemoteFailed {
		resp.Warning = "removed locally; the record may still exist in the durable store: " + outcome.RemoteErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// StatusRequest carries a target status selected in the admin UI.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ChangeStatus handles POST /api/admin/documents/:id/status
func (h *Handlers) ChangeStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	target := lifecycle.State(req.Status)
	if !target.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown status: " + req.Status})
		return
	}

	doc, err := h.coordinator.Get(c.Request.Context(), c.Param("id"))
	if err == cache.ErrNotFound {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "document not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	machine, err := doc.Machine()
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	trigger, ok := machine.TriggerTo(target)
	if !ok {
		c.JSON(http.StatusConflict, Response{
			Success: false,
			Error:   "cannot move " + string(doc.Status) + " to " + string(target),
		})
		return
	}
	if err := machine.Fire(trigger); err != nil {
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}
	doc.Status = machine.State()

	outcome, err := h.coordinator.Save(c.Request.Context(), doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	resp := Response{Success: true, Data: doc}
	if outcome.Degraded {
		resp.Warning = "status saved locally only: " + outcome.DurableErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// SendRequest optionally overrides the recipient of a document email.
type SendRequest struct {
	Recipient string `json:"recipient"`
}

// SendDocument handles POST /api/admin/documents/:id/send
func (h *Handlers) SendDocument(c *gin.Context) {
	var req SendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return
		}
	}

	doc, err := h.coordinator.Get(c.Request.Context(), c.Param("id"))
	if err == cache.ErrNotFound {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "document not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	if err := billing.ValidateForSend(doc); err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
		return
	}

	pdfBytes, err := h.pdfGen.Generate(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	attachment := email.Attachment{Filename: pdf.Filename(doc), Content: pdfBytes}

	if err := h.sender.SendDocument(c.Request.Context(), doc, req.Recipient, attachment); err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		return
	}

	// Persist the status advance performed by the sender.
	outcome, err := h.coordinator.Save(c.Request.Context(), doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	resp := Response{Success: true, Data: doc}
	if outcome.Degraded {
		resp.Warning = "email sent but status saved locally only: " + outcome.DurableErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// --- Reconciliation ---

// SyncFromDurable handles POST /api/admin/sync
func (h *Handlers) SyncFromDurable(c *gin.Context) {
	count, err := h.coordinator.SyncFromDurable(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"documents": count}})
}

// MigrateToDurable handles POST /api/admin/migrate
func (h *Handlers) MigrateToDurable(c *gin.Context) {
	report, err := h.coordinator.MigrateToDurable(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// --- Email audit log ---

// ListEmailLog handles GET /api/admin/email-log?limit=
func (h *Handlers) ListEmailLog(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	entries, err := h.emailLog.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: entries})
}

// --- Export ---

// ExportDocuments handles GET /api/admin/documents/export?kind=
func (h *Handlers) ExportDocuments(c *gin.Context) {
	kind := billing.Kind(c.Query("kind"))
	if kind != "" && !kind.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "kind must be invoice or quote"})
		return
	}
	docs, err := h.coordinator.List(c.Request.Context(), kind)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	data, err := h.exporter.Export(docs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="documents.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// DocumentPDF handles GET /api/admin/documents/:id/pdf
func (h *Handlers) DocumentPDF(c *gin.Context) {
	doc, err := h.coordinator.Get(c.Request.Context(), c.Param("id"))
	if err == cache.ErrNotFound {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "document not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	data, err := h.pdfGen.Generate(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+pdf.Filename(doc)+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
