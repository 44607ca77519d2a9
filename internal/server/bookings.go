package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
)

func (s *Server) ListBookings(c *gin.Context) {
	pageSize := int64(0)
	if raw := c.Query("page_size"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		pageSize = parsed
	}

	res, err := s.bookingSvc.List(c.Request.Context(), bookingdomain.ListBookingsRequest{
		PageToken: c.Query("page_token"),
		PageSize:  int32(pageSize),
		Status:    c.Query("status"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) GetBooking(c *gin.Context) {
	booking, err := s.bookingSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
