package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"pharmaledger/internal/core/apperror"
	appctx "pharmaledger/internal/core/context"
)

// SecureHeaders applies the standard security headers. In production plain
// HTTP requests are redirected to HTTPS.
func SecureHeaders(production bool) gin.HandlerFunc {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})

	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			// secure already wrote the response
			c.Abort()
			return
		}
		if status := c.Writer.Status(); status >= http.StatusMultipleChoices && status < http.StatusBadRequest {
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimit allows perMinute requests per caller. Authenticated callers are
// keyed by user, anonymous ones by client IP. Non-positive limits disable it.
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":"` + apperror.CodeRateLimited + `","message":"too many requests"}`))
		}),
	)

	return wrapHTTP(limiter)
}

func rateLimitKey(r *http.Request) (string, error) {
	if user := appctx.GetUser(r.Context()); user != nil {
		return "user:" + user.UserID.String(), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

// wrapHTTP adapts a net/http middleware to gin. The chain continues only if
// the wrapped middleware calls its next handler.
func wrapHTTP(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}
