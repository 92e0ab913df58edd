package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/sourcekart/sourcekart/internal/catalog/domain"
	orderdomain "github.com/sourcekart/sourcekart/internal/order/domain"
)

// ListProducts handles GET /api/v1/products. Public catalog, active only.
func (s *Server) ListProducts(c *gin.Context) {
	items, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{
		Category: c.Query("category"),
		Status:   catalogdomain.StatusActive,
		SortBy:   c.Query("sort_by"),
		OrderBy:  c.Query("order_by"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// The storefront listing never exposes asset keys.
	for i := range items {
		items[i].AssetKey = ""
	}
	c.JSON(http.StatusOK, gin.H{"products": items})
}

// GetProduct handles GET /api/v1/products/:id.
func (s *Server) GetProduct(c *gin.Context) {
	item, err := s.catalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if item.Status != catalogdomain.StatusActive {
		AbortWithError(c, catalogdomain.ErrNotFound)
		return
	}

	item.AssetKey = ""
	c.JSON(http.StatusOK, item)
}

// CreateCheckout handles POST /api/v1/checkout.
func (s *Server) CreateCheckout(c *gin.Context) {
	var req orderdomain.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetOrder handles GET /api/v1/orders/:ref.
func (s *Server) GetOrder(c *gin.Context) {
	resp, err := s.orderSvc.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FailOrder handles POST /api/v1/orders/:ref/fail, called when the gateway
// checkout is dismissed or declined.
func (s *Server) FailOrder(c *gin.Context) {
	resp, err := s.orderSvc.MarkFailed(c.Request.Context(), c.Param("ref"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type recoverRequest struct {
	Email string `json:"email"`
}

// RecoverDownloads handles POST /api/v1/downloads/recover.
func (s *Server) RecoverDownloads(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	purchases, err := s.downloadSvc.Recover(c.Request.Context(), req.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"purchases": purchases,
	})
}
