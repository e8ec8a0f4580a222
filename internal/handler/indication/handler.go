package indication

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/internal/service/indication"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/httputil"
)

const defaultPageSize = 20

type Handler struct {
	service indication.Service
}

func NewHandler(service indication.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	indications := r.Group("/service-indications")
	{
		indications.POST("", h.Create)
		indications.GET("", h.List)
		indications.GET("/:id", h.Get)
	}
	r.GET("/medical-records/:id/service-indication", h.GetByMedicalRecord)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateServiceIndicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	si, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "service indication created", si)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid service indication id", nil))
		return
	}

	si, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "service indication found", si)
}

func (h *Handler) GetByMedicalRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid medical record id", nil))
		return
	}

	si, err := h.service.GetByMedicalRecord(c.Request.Context(), recordID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "service indication found", si)
}

func (h *Handler) List(c *gin.Context) {
	page := httputil.PageFromQuery(c, defaultPageSize)
	indications, total, err := h.service.List(c.Request.Context(), repository.Page{Skip: page.Skip, Limit: page.Limit})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "service indications", indications, httputil.NewMeta(total, page.Skip, page.Limit))
}
