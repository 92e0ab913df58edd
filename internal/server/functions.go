package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/sourcekart/sourcekart/internal/auth/domain"
	downloaddomain "github.com/sourcekart/sourcekart/internal/download/domain"
	paymentdomain "github.com/sourcekart/sourcekart/internal/payment/domain"
)

// AdminAuth handles POST /functions/v1/admin-auth.
func (s *Server) AdminAuth(c *gin.Context) {
	if s.limiter.Enabled() && !s.limiter.AllowLogin(c.Request.Context(), c.ClientIP()) {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, authdomain.ErrMissingCredentials)
		return
	}

	resp, err := s.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   resp.Token,
		"user":    resp.User,
	})
}

// VerifyPayment handles POST /functions/v1/verify-payment.
func (s *Server) VerifyPayment(c *gin.Context) {
	var req paymentdomain.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, paymentdomain.ErrMissingFields)
		return
	}

	resp, err := s.paymentSvc.Complete(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := gin.H{
		"success": true,
		"message": resp.Message,
	}
	if resp.DownloadToken != "" {
		out["download_token"] = resp.DownloadToken
	}
	c.JSON(http.StatusOK, out)
}

// SecureDownload handles POST /functions/v1/secure-download.
func (s *Server) SecureDownload(c *gin.Context) {
	var req downloaddomain.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, downloaddomain.ErrMissingFields)
		return
	}

	if s.limiter.Enabled() && !s.limiter.AllowDownload(c.Request.Context(), req.UserEmail) {
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	resp, err := s.downloadSvc.Resolve(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"download_url": resp.DownloadURL,
		"product_name": resp.ProductName,
		"expires_in":   resp.ExpiresIn,
	})
}
