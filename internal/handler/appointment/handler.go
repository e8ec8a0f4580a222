package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/middleware"
	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/internal/service/appointment"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/httputil"
)

const defaultPageSize = 20

type Handler struct {
	service appointment.Service
}

func NewHandler(service appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Create)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id", h.Update)
		appointments.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) Create(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		httputil.RespondWithError(c, errors.Unauthenticated("authentication required"))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	apt, err := h.service.Create(c.Request.Context(), u.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "appointment created", apt)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid appointment id", nil))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "appointment found", apt)
}

func (h *Handler) List(c *gin.Context) {
	page := httputil.PageFromQuery(c, defaultPageSize)

	filters := &model.AppointmentFilters{}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, errors.Validation("invalid patient_id filter", nil))
			return
		}
		filters.PatientID = id
	}
	if v := c.Query("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			httputil.RespondWithError(c, errors.Validation("invalid doctor_id filter", nil))
			return
		}
		filters.DoctorID = id
	}
	if v := c.Query("status"); v != "" {
		status := model.AppointmentStatus(v)
		if !status.Valid() {
			httputil.RespondWithError(c, errors.Validation("invalid status filter", nil))
			return
		}
		filters.Status = status
	}
	if v := c.Query("date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			httputil.RespondWithError(c, errors.Validation("invalid date filter, expected YYYY-MM-DD", nil))
			return
		}
		filters.Date = &date
	}

	appointments, total, err := h.service.List(c.Request.Context(), filters, repository.Page{Skip: page.Skip, Limit: page.Limit})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "appointments", appointments, httputil.NewMeta(total, page.Skip, page.Limit))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid appointment id", nil))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	apt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "appointment updated", apt)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid appointment id", nil))
		return
	}

	var req struct {
		Status model.AppointmentStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "appointment status updated", apt)
}
