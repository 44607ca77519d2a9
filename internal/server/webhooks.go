package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
)

// HandlePaymentWebhook ingests one gateway delivery. Duplicates and
// conflicts answer 200 so the provider stops redelivering; only
// transient failures surface as errors.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err = s.webhookSvc.IngestWebhook(c.Request.Context(), provider, payload, c.Request.Header)
	if err != nil {
		if errors.Is(err, bookingdomain.ErrEventAlreadyProcessed) ||
			errors.Is(err, bookingdomain.ErrWebhookConflict) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
