package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTOperatorIDKey = "jwt_operator_id"
	JWTOperatorKey   = "jwt_operator"
	JWTRegisterKey   = "jwt_register"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
)

// JWTAuthMiddleware validates the register token and stores the operator
// identity in the gin context. Paths in skipPaths pass through unauthenticated.
func JWTAuthMiddleware(jwtService *auth.JWTService, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Missing or malformed authorization header")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, "Missing token")
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(JWTOperatorIDKey, claims.OperatorID)
		c.Set(JWTOperatorKey, claims.Operator)
		c.Set(JWTRegisterKey, claims.Register)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// GetOperator returns the authenticated operator name from the context,
// used as the actor on audit records
func GetOperator(c *gin.Context) string {
	if operator := c.GetString(JWTOperatorKey); operator != "" {
		return operator
	}
	if id := c.GetString(JWTOperatorIDKey); id != "" {
		return id
	}
	return "anonymous"
}
