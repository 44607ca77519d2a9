package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/smallbiznis/reservo/internal/catalog/domain"
)

func (s *Server) ListPackages(c *gin.Context) {
	packages, err := s.catalogSvc.GetPackages(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

func (s *Server) GetPackage(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	pkg, addOns, err := s.catalogSvc.GetPackageBySlug(c.Request.Context(), slug)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"package": pkg, "add_ons": addOns})
}

func (s *Server) AdminListPackages(c *gin.Context) {
	snapshot, err := s.catalogSvc.GetSnapshot(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

type createPackageRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	SegmentID   string `json:"segment_id"`
	Active      *bool  `json:"active"`
}

func (s *Server) AdminCreatePackage(c *gin.Context) {
	var req createPackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	pkg, err := s.catalogSvc.CreatePackage(c.Request.Context(), catalogdomain.CreatePackageRequest{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		SegmentID:   req.SegmentID,
		Active:      req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

type updatePackageRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	SegmentID   *string `json:"segment_id"`
	Active      *bool   `json:"active"`
}

func (s *Server) AdminUpdatePackage(c *gin.Context) {
	var req updatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	pkg, err := s.catalogSvc.UpdatePackage(c.Request.Context(), catalogdomain.UpdatePackageRequest{
		ID:          c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		SegmentID:   req.SegmentID,
		Active:      req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (s *Server) AdminDeletePackage(c *gin.Context) {
	if err := s.catalogSvc.DeletePackage(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createAddOnRequest struct {
	PackageID string `json:"package_id"`
	Title     string `json:"title" binding:"required"`
	Price     int64  `json:"price"`
	Active    *bool  `json:"active"`
}

func (s *Server) AdminCreateAddOn(c *gin.Context) {
	var req createAddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	addOn, err := s.catalogSvc.CreateAddOn(c.Request.Context(), catalogdomain.CreateAddOnRequest{
		PackageID: req.PackageID,
		Title:     req.Title,
		Price:     req.Price,
		Active:    req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, addOn)
}

type updateAddOnRequest struct {
	Title  *string `json:"title"`
	Price  *int64  `json:"price"`
	Active *bool   `json:"active"`
}

func (s *Server) AdminUpdateAddOn(c *gin.Context) {
	var req updateAddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	addOn, err := s.catalogSvc.UpdateAddOn(c.Request.Context(), catalogdomain.UpdateAddOnRequest{
		ID:     c.Param("id"),
		Title:  req.Title,
		Price:  req.Price,
		Active: req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, addOn)
}

func (s *Server) AdminDeleteAddOn(c *gin.Context) {
	if err := s.catalogSvc.DeleteAddOn(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) AdminListSegments(c *gin.Context) {
	segments, err := s.catalogSvc.ListSegments(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segments": segments})
}

type createSegmentRequest struct {
	Name     string `json:"name" binding:"required"`
	Position *int   `json:"position"`
}

func (s *Server) AdminCreateSegment(c *gin.Context) {
	var req createSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	segment, err := s.catalogSvc.CreateSegment(c.Request.Context(), catalogdomain.CreateSegmentRequest{
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, segment)
}

type updateSegmentRequest struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

func (s *Server) AdminUpdateSegment(c *gin.Context) {
	var req updateSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	segment, err := s.catalogSvc.UpdateSegment(c.Request.Context(), catalogdomain.UpdateSegmentRequest{
		ID:       c.Param("id"),
		Name:     req.Name,
		Position: req.Position,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, segment)
}

func (s *Server) AdminDeleteSegment(c *gin.Context) {
	if err := s.catalogSvc.DeleteSegment(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
