package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
)

type createCheckoutRequest struct {
	PackageID    string   `json:"package_id" binding:"required"`
	EventDate    string   `json:"event_date" binding:"required"`
	AddOnIDs     []string `json:"add_on_ids"`
	CustomerName string   `json:"customer_name" binding:"required"`
	Email        string   `json:"email" binding:"required"`
}

func (s *Server) CreateCheckout(c *gin.Context) {
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	res, err := s.bookingSvc.CreateCheckout(c.Request.Context(), bookingdomain.CreateCheckoutRequest{
		PackageID:    req.PackageID,
		EventDate:    req.EventDate,
		AddOnIDs:     req.AddOnIDs,
		CustomerName: req.CustomerName,
		Email:        req.Email,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}
