package invoice

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/middleware"
	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/internal/service/invoice"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/httputil"
)

const defaultPageSize = 20

type Handler struct {
	service invoice.Service
}

func NewHandler(service invoice.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	invoices := r.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
	}
	r.GET("/medical-records/:id/invoice", h.GetByMedicalRecord)
}

// Create finalizes an invoice. The created_by field is taken from the
// authenticated account, not the request body.
func (h *Handler) Create(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		httputil.RespondWithError(c, errors.Unauthenticated("authentication required"))
		return
	}

	var req model.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	req.CreatedBy = u.ID

	detail, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "invoice created", detail)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid invoice id", nil))
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "invoice found", detail)
}

func (h *Handler) GetByMedicalRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid medical record id", nil))
		return
	}

	detail, err := h.service.GetByMedicalRecord(c.Request.Context(), recordID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "invoice found", detail)
}

func (h *Handler) List(c *gin.Context) {
	page := httputil.PageFromQuery(c, defaultPageSize)
	invoices, total, err := h.service.List(c.Request.Context(), repository.Page{Skip: page.Skip, Limit: page.Limit})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "invoices", invoices, httputil.NewMeta(total, page.Skip, page.Limit))
}
