package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/internal/services"
)

const APIKeyHeader = "X-API-Key"

// APIKeyAuth authenticates tenant-facing endpoints with the tenant API key.
// The key doubles as the tenant identity and is stored in the request context
// under "api_key".
func APIKeyAuth(tenants *services.TenantService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(APIKeyHeader)
		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "MISSING_API_KEY",
					"message": "X-API-Key header is required",
				},
			})
			c.Abort()
			return
		}

		if err := tenants.ValidateAPIKey(apiKey); err != nil {
			logger.WithField("path", c.Request.URL.Path).Warn("Rejected request with unknown API key")
			c.JSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "INVALID_API_KEY",
					"message": "API key does not belong to a registered tenant",
				},
			})
			c.Abort()
			return
		}

		c.Set("api_key", apiKey)
		c.Next()
	}
}

// AdminAuth guards the admin catalog surface with a bearer JWT.
func AdminAuth(auth *services.AuthService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "MISSING_TOKEN",
					"message": "Authorization header is required",
				},
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Authorization header must be of the form 'Bearer <token>'",
				},
			})
			c.Abort()
			return
		}

		subject, err := auth.ValidateAdminToken(parts[1])
		if err != nil {
			logger.WithError(err).Warn("Rejected request with invalid admin token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "INVALID_TOKEN",
					"message": "Token is invalid or expired",
				},
			})
			c.Abort()
			return
		}

		c.Set("admin_subject", subject)
		c.Next()
	}
}
