package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dukamart/inventory/internal/infrastructure/config"
)

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		Enabled:       true,
		AllowOrigins:  []string{"http://admin.duka.local"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        time.Hour,
	}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/x", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("允许的域名", func(t *testing.T) {
		w := send(http.MethodGet, "http://admin.duka.local")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://admin.duka.local", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
		assert.Equal(t, HeaderRequestID, w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("预检请求", func(t *testing.T) {
		w := send(http.MethodOptions, "http://admin.duka.local")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("未允许的域名", func(t *testing.T) {
		w := send(http.MethodGet, "http://evil.example")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("非浏览器请求", func(t *testing.T) {
		w := send(http.MethodGet, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
