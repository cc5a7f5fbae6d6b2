package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/infrastructure/printing"
	"github.com/backoffice/backend/internal/interfaces/http/dto"
	"github.com/backoffice/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides the response helpers shared by all handlers
type BaseHandler struct{}

func (h *BaseHandler) getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// Success sends a 200 response with the standard envelope
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response with the given code and message
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(code, message, h.getRequestID(c)))
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, message, h.getRequestID(c)))
}

// HandleBindingError sends a 400 response with per-field detail when the
// error came from request binding
func (h *BaseHandler) HandleBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]dto.ValidationDetail, len(validationErrs))
		for i, fieldErr := range validationErrs {
			details[i] = dto.ValidationDetail{
				Field:   fieldErr.Field(),
				Message: validationMessage(fieldErr),
			}
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Validation failed", h.getRequestID(c), details))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInvalidJSON, "Invalid request body", h.getRequestID(c)))
}

// HandleError maps a service error to the right HTTP response
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(
			code, domainErr.Message, h.getRequestID(c)))
		return
	}

	var renderErr *printing.RenderError
	if errors.As(err, &renderErr) {
		code := dto.ErrCodeRenderFailed
		if renderErr.Code == printing.ErrCodeRenderTimeout {
			code = dto.ErrCodeRenderTimeout
		}
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(
			code, "Invoice rendering failed", h.getRequestID(c)))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal, "Internal server error", h.getRequestID(c)))
}

// validationMessage renders one validator tag as a human-readable message
func validationMessage(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		return field + " is required"
	case "required_without":
		return field + " is required when " + strings.ToLower(fieldErr.Param()) + " is empty"
	case "min":
		return field + " must be at least " + fieldErr.Param()
	case "max":
		return field + " must be at most " + fieldErr.Param()
	case "oneof":
		return field + " must be one of: " + fieldErr.Param()
	default:
		return field + " is invalid"
	}
}
