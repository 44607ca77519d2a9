package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	availabilitydomain "github.com/smallbiznis/reservo/internal/availability/domain"
	blackoutdomain "github.com/smallbiznis/reservo/internal/blackout/domain"
	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
	catalogdomain "github.com/smallbiznis/reservo/internal/catalog/domain"
	paymentdomain "github.com/smallbiznis/reservo/internal/payment/domain"
	tenantdomain "github.com/smallbiznis/reservo/internal/tenant/domain"
	"github.com/smallbiznis/reservo/pkg/dateonly"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, bookingdomain.ErrDateUnavailable):
		return http.StatusConflict, errorPayload{
			Type:    "date_unavailable",
			Message: "the requested date is not available",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, bookingdomain.ErrPaymentGateway),
		errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, dateonly.ErrInvalidDate),
		errors.Is(err, availabilitydomain.ErrInvalidDate),
		errors.Is(err, availabilitydomain.ErrInvalidRange),
		errors.Is(err, blackoutdomain.ErrInvalidDate),
		errors.Is(err, blackoutdomain.ErrInvalidID),
		errors.Is(err, bookingdomain.ErrInvalidPackage),
		errors.Is(err, bookingdomain.ErrInvalidDate),
		errors.Is(err, bookingdomain.ErrInvalidEmail),
		errors.Is(err, bookingdomain.ErrInvalidName),
		errors.Is(err, bookingdomain.ErrInvalidAddOn),
		errors.Is(err, bookingdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidTitle),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidPrice),
		errors.Is(err, catalogdomain.ErrInvalidID),
		errors.Is(err, catalogdomain.ErrInvalidAddOn),
		errors.Is(err, catalogdomain.ErrInvalidSegment),
		errors.Is(err, tenantdomain.ErrInvalidSlug),
		errors.Is(err, paymentdomain.ErrInvalidProvider),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidEvent):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, blackoutdomain.ErrNotFound),
		errors.Is(err, bookingdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrProviderNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, blackoutdomain.ErrBlackoutExists),
		errors.Is(err, catalogdomain.ErrSlugTaken),
		errors.Is(err, catalogdomain.ErrPackageInUse),
		errors.Is(err, catalogdomain.ErrSegmentInUse):
		return true
	default:
		return false
	}
}
