package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/middleware"
	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/internal/service/catalog"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/httputil"
)

const defaultPageSize = 50

type Handler struct {
	service catalog.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service catalog.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{service: service, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	services := r.Group("/services")
	{
		services.GET("", h.List)
		services.GET("/:id", h.Get)

		admin := services.Group("", h.auth.RequireRoles(model.RoleAdmin))
		{
			admin.POST("", h.Create)
			admin.PUT("/:id", h.Update)
			admin.DELETE("/:id", h.Delete)
		}
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	svc, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "service created", svc)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid service id", nil))
		return
	}

	svc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "service found", svc)
}

func (h *Handler) List(c *gin.Context) {
	page := httputil.PageFromQuery(c, defaultPageSize)
	services, total, err := h.service.List(c.Request.Context(), repository.Page{Skip: page.Skip, Limit: page.Limit})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithList(c, "services", services, httputil.NewMeta(total, page.Skip, page.Limit))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid service id", nil))
		return
	}

	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	svc, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "service updated", svc)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid service id", nil))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "service deleted", nil)
}
