package medicalrecord

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/internal/service/medicalrecord"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/httputil"
)

const defaultPageSize = 20

type Handler struct {
	service medicalrecord.Service
}

func NewHandler(service medicalrecord.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/medical-records")
	{
		records.POST("", h.Create)
		records.GET("", h.List)
		records.GET("/:id", h.Get)
		records.PUT("/:id", h.Update)
	}
	r.GET("/patients/:id/medical-records", h.ListByPatient)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	rec, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "medical record created", rec)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid medical record id", nil))
		return
	}

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "medical record found", rec)
}

func (h *Handler) List(c *gin.Context) {
	page := httputil.PageFromQuery(c, defaultPageSize)
	records, total, err := h.service.List(c.Request.Context(), repository.Page{Skip: page.Skip, Limit: page.Limit})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "medical records", records, httputil.NewMeta(total, page.Skip, page.Limit))
}

func (h *Handler) ListByPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid patient id", nil))
		return
	}

	page := httputil.PageFromQuery(c, defaultPageSize)
	records, total, err := h.service.ListByPatient(c.Request.Context(), patientID, repository.Page{Skip: page.Skip, Limit: page.Limit})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "medical records", records, httputil.NewMeta(total, page.Skip, page.Limit))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid medical record id", nil))
		return
	}

	var req model.UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	rec, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "medical record updated", rec)
}
