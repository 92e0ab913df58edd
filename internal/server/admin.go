package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/sourcekart/sourcekart/internal/catalog/domain"
	orderdomain "github.com/sourcekart/sourcekart/internal/order/domain"
	purchasedomain "github.com/sourcekart/sourcekart/internal/purchase/domain"
)

// AdminListProducts handles GET /api/v1/admin/products. Unlike the public
// listing it includes drafts, archived rows and asset keys.
func (s *Server) AdminListProducts(c *gin.Context) {
	items, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		SortBy:   c.Query("sort_by"),
		OrderBy:  c.Query("order_by"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": items})
}

// AdminCreateProduct handles POST /api/v1/admin/products.
func (s *Server) AdminCreateProduct(c *gin.Context) {
	var req catalogdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AdminGetProduct handles GET /api/v1/admin/products/:id.
func (s *Server) AdminGetProduct(c *gin.Context) {
	resp, err := s.catalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdminUpdateProduct handles PATCH /api/v1/admin/products/:id.
func (s *Server) AdminUpdateProduct(c *gin.Context) {
	var req catalogdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	resp, err := s.catalogSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdminArchiveProduct handles DELETE /api/v1/admin/products/:id. Products
// are archived, never removed, so settled orders keep their reference.
func (s *Server) AdminArchiveProduct(c *gin.Context) {
	resp, err := s.catalogSvc.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdminListOrders handles GET /api/v1/admin/orders.
func (s *Server) AdminListOrders(c *gin.Context) {
	items, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListRequest{
		CustomerEmail: c.Query("customer_email"),
		PaymentStatus: c.Query("payment_status"),
		SortBy:        c.Query("sort_by"),
		OrderBy:       c.Query("order_by"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": items})
}

// AdminListPurchases handles GET /api/v1/admin/purchases.
func (s *Server) AdminListPurchases(c *gin.Context) {
	items, err := s.purchaseSvc.List(c.Request.Context(), purchasedomain.ListRequest{
		UserEmail: c.Query("user_email"),
		SortBy:    c.Query("sort_by"),
		OrderBy:   c.Query("order_by"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": items})
}
