package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/teams/:id/analytics", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	before := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/teams/:id/analytics", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teams/t1/analytics", nil))
	after := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/teams/:id/analytics", "200"))

	if after != before+1 {
		t.Fatalf("counter delta = %v, want 1", after-before)
	}
}

func TestMetrics_UnmatchedRouteUsesRawPath(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())

	before := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	after := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/nope", "404"))

	if after != before+1 {
		t.Fatalf("counter delta = %v, want 1", after-before)
	}
}
