package middleware

import (
	"strings"

	"github.com/amoylab/rentmanager/internal/auth/jwt"
	"github.com/amoylab/rentmanager/internal/common/cnst"
	"github.com/amoylab/rentmanager/internal/common/errorx"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware verifies the session token from the Authorization
// header or, failing that, the session cookie.
func JWTAuthMiddleware(jwtService *jwt.Service, cookieName string, eh *errorx.ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && cookieName != "" {
			token, _ = c.Cookie(cookieName)
		}
		if token == "" {
			eh.HandleError(c, errorx.Unauthorized())
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			eh.HandleError(c, errorx.Unauthorized().WithCause(err))
			return
		}

		c.Set(cnst.CtxKeyClaims, claims)
		c.Set(cnst.CtxKeyUserID, claims.Subject())
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserID returns the authenticated caller set by JWTAuthMiddleware
func UserID(c *gin.Context) string {
	return c.GetString(cnst.CtxKeyUserID)
}
