package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods      = "GET,POST,PUT,DELETE,OPTIONS"
	corsHeaders      = "Content-Type"
	corsPreflightAge = "600"
)

// CORSMiddleware admits the configured browser origins. Credentials
// are always allowed because the session rides in a cookie, which also
// means the allow-origin header must echo the exact origin rather
// than "*".
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))

	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(ctx *gin.Context) {
		ctx.Header("Vary", "Origin")

		origin := ctx.GetHeader("Origin")

		if _, ok := allowed[origin]; ok && origin != "" {
			ctx.Header("Access-Control-Allow-Origin", origin)
			ctx.Header("Access-Control-Allow-Credentials", "true")

			if ctx.Request.Method == http.MethodOptions {
				ctx.Header("Access-Control-Allow-Methods", corsMethods)
				ctx.Header("Access-Control-Allow-Headers", corsHeaders)
				ctx.Header("Access-Control-Max-Age", corsPreflightAge)
			}
		}

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
