package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	blackoutdomain "github.com/smallbiznis/reservo/internal/blackout/domain"
)

func (s *Server) ListBlackouts(c *gin.Context) {
	blackouts, err := s.blackoutSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blackouts": blackouts})
}

type createBlackoutRequest struct {
	Date   string `json:"date" binding:"required"`
	Reason string `json:"reason"`
}

func (s *Server) CreateBlackout(c *gin.Context) {
	var req createBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	blackout, err := s.blackoutSvc.Create(c.Request.Context(), blackoutdomain.CreateBlackoutRequest{
		Date:   req.Date,
		Reason: req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, blackout)
}

func (s *Server) DeleteBlackout(c *gin.Context) {
	if err := s.blackoutSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
