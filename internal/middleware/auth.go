package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/parknow-app/parknow-api/internal/config"
	"github.com/parknow-app/parknow-api/internal/httperr"
	"github.com/parknow-app/parknow-api/internal/models"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextSpace    = "parkingSpace"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Authorization header must be a bearer token")
			c.Abort()
			return
		}

		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {

			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "Token is invalid or expired")
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			httperr.Unauthorized(c, "invalid_token_claims", "Token claims are malformed")
			c.Abort()
			return
		}

		userID, ok1 := claims["sub"].(float64)
		role, ok2 := claims["role"].(string)
		if !ok1 || !ok2 {
			httperr.Unauthorized(c, "invalid_token_payload", "Token payload is malformed")
			c.Abort()
			return
		}

		c.Set(ContextUserID, uint(userID))
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

// RequireRole rejects callers whose role is not in the allowed set.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		httperr.Forbidden(c, "insufficient_role", "You do not have permission to access this resource")
		c.Abort()
	}
}

// RequireSpaceOwnership loads the parking space named by the :id param and
// allows the caller through only when they own it or are an admin. The loaded
// record is cached in the context so handlers do not refetch it.
func RequireSpaceOwnership(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			httperr.NotFound(c, "parking_space_not_found", "Parking space not found")
			c.Abort()
			return
		}

		var space models.ParkingSpace
		if err := db.Preload("Owner").First(&space, uint(id)).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				httperr.NotFound(c, "parking_space_not_found", "Parking space not found")
			} else {
				httperr.Internal(c, "internal_error", "Server error")
			}
			c.Abort()
			return
		}

		userID := c.GetUint(ContextUserID)
		role := c.GetString(ContextUserRole)

		if space.OwnerID != userID && role != models.RoleAdmin {
			httperr.Forbidden(c, "not_owner", "Only the owner or an admin can modify this parking space")
			c.Abort()
			return
		}

		c.Set(ContextSpace, &space)
		c.Next()
	}
}
