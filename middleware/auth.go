package middleware

import (
	"net/http"

	"prescripto_back_end_go/auth"

	"github.com/gin-gonic/gin"
)

// The clients send their JWT in a custom header per actor: "token" for
// patients, "dToken" for doctors, "aToken" for admins. There is no
// bearer prefix.
func AuthUser() gin.HandlerFunc {
	return requireRole("token", auth.RolePatient, "userId")
}

func AuthDoctor() gin.HandlerFunc {
	return requireRole("dToken", auth.RoleDoctor, "docId")
}

func AuthAdmin() gin.HandlerFunc {
	return requireRole("aToken", auth.RoleAdmin, "adminId")
}

func requireRole(header string, role string, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(header)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized. Login Again"})
			return
		}
		id, err := auth.ValidateToken(raw, role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized. Login Again"})
			return
		}
		c.Set(contextKey, id)
		c.Next()
	}
}
