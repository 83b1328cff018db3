package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KP12130/KPCasinoAI/internal/services"
)

const (
	ContextSubjectID = "subject_id"
	ContextEmail     = "email"
	ContextName      = "name"
)

// Verifier resolves a bearer credential to a verified identity.
type Verifier interface {
	Verify(credential string) (services.Identity, error)
}

func AuthMiddleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization format"})
			c.Abort()
			return
		}

		identity, err := verifier.Verify(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			c.Abort()
			return
		}

		c.Set(ContextSubjectID, identity.SubjectID)
		c.Set(ContextEmail, identity.Email)
		c.Set(ContextName, identity.Name)

		c.Next()
	}
}
