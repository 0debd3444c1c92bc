package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/scholarships", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/scholarships", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSAllowAll(t *testing.T) {
	rec := serve(nil, http.MethodGet, "https://anywhere.example")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSAllowList(t *testing.T) {
	allowed := serve([]string{"https://fullsco.net/"}, http.MethodGet, "https://fullsco.net")
	assert.Equal(t, "https://fullsco.net", allowed.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", allowed.Header().Get("Access-Control-Allow-Credentials"))

	denied := serve([]string{"https://fullsco.net"}, http.MethodGet, "https://evil.example")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, denied.Code)
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(nil, http.MethodOptions, "https://fullsco.net")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
