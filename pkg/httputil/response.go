package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dermaclinic/clinic-api/pkg/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Details interface{} `json:"details,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta carries pagination metadata on list responses.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// NewMeta derives page numbers from the skip/limit the client sent.
func NewMeta(total, skip, limit int) *Meta {
	if limit <= 0 {
		limit = 1
	}
	return &Meta{
		Total:      total,
		Page:       skip/limit + 1,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

// RespondWithSuccess sends a success envelope.
func RespondWithSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithList sends a success envelope with pagination metadata.
func RespondWithList(c *gin.Context, message string, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// RespondWithError translates an error into the failure envelope.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("unclassified error")
		appErr = errors.Internal(err)
	}

	if appErr.Kind == errors.KindInternal && appErr.Err != nil {
		log.Error().Err(appErr.Err).
			Str("path", c.Request.URL.Path).
			Msg("internal error")
	}

	c.JSON(appErr.StatusCode(), Response{
		Success: false,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// FieldError is one entry of a 422 validation response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RespondWithBindError turns a gin binding failure into a 422 with a
// per-field message list, or a generic 422 for malformed bodies.
func RespondWithBindError(c *gin.Context, err error) {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Message: fe.Tag(),
			})
		}
		RespondWithError(c, errors.Validation("validation failed", fields))
		return
	}
	RespondWithError(c, errors.Validation("invalid request body", err.Error()))
}
