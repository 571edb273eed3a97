package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error {
		req := struct {
			Limit int    `query:"limit" default:"5" validate:"gte=1,lte=10"`
			Order string `query:"order" default:"desc" validate:"oneof=asc desc"`
		}{}
		if errs := ReadAndValidateRequest(c, &req); errs != nil {
			return BadRequestResponse(c, errs)
		}
		return SuccessResponse(c, req)
	})
}

func serve(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServerRoutes(t *testing.T) {
	s := NewServer([]Handler{pingHandler{}}, WithMetrics("/metrics", prometheus.NewRegistry()))

	rec := serve(s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"message":"OK","data":{"Limit":5,"Order":"desc"}}`, rec.Body.String())

	rec = serve(s, "/ping?limit=50&order=up")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"limit"`)
	assert.Contains(t, rec.Body.String(), `"field":"order"`)

	rec = serve(s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
