package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRegisterExposesCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	Register(router, "/metrics")

	Uploads.Inc()
	RangeRequests.Inc()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "filedrop_uploads_total")
	assert.Contains(t, body, "filedrop_range_requests_total")
	assert.Contains(t, body, "filedrop_bytes_streamed_total")
}
