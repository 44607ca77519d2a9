package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/reservo/pkg/dateonly"
)

// GetAvailability serves both forms of the public availability query:
// ?date=YYYY-MM-DD for a single-day verdict and ?start=&end= for the
// unavailable dates of a range. With no parameters it returns the full
// bookable horizon.
func (s *Server) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := dateonly.Parse(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		res, err := s.availabilitySvc.GetAvailability(ctx, date)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	start := dateonly.Date(strings.TrimSpace(c.Query("start")))
	end := dateonly.Date(strings.TrimSpace(c.Query("end")))
	if start.IsZero() && end.IsZero() {
		// Whole horizon; the service clamps to [today, today+horizon].
		start = dateonly.Date("0001-01-01")
		end = dateonly.Date("9999-12-31")
	}

	res, err := s.availabilitySvc.UnavailableDates(ctx, start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
