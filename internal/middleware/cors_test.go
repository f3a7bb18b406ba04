package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter(origins []string) *gin.Engine {
	router := gin.New()
	router.Use(CORS(origins))
	router.PUT("/api/chapters/:id/draft", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/api/novels", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func TestCORS_AllowsAnyOriginByDefault(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/novels", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	corsRouter(nil).ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, expected *", got)
	}
}

func TestCORS_ConfiguredOrigins(t *testing.T) {
	router := corsRouter([]string{"https://reader.example.com"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/novels", nil)
	req.Header.Set("Origin", "https://reader.example.com")
	router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://reader.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/novels", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("unknown origin: expected %d, got %d", http.StatusForbidden, w.Code)
	}
}

func TestCORS_PreflightRequest(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/chapters/1/draft", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
	corsRouter(nil).ServeHTTP(w, req)

	if w.Code != http.StatusNoContent && w.Code != http.StatusOK {
		t.Errorf("preflight: expected 204 or 200, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("Access-Control-Allow-Methods header should be set")
	}
}
