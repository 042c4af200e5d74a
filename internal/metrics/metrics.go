package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Uploads counts accepted uploads.
	Uploads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filedrop_uploads_total",
		Help: "Number of objects uploaded.",
	})

	// Deletes counts removed objects.
	Deletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filedrop_deletes_total",
		Help: "Number of objects deleted.",
	})

	// Downloads counts attachment downloads.
	Downloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filedrop_downloads_total",
		Help: "Number of attachment downloads served.",
	})

	// RangeRequests counts partial-content responses.
	RangeRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filedrop_range_requests_total",
		Help: "Number of 206 partial-content responses served.",
	})

	// BytesStreamed totals the payload bytes written by raw and download responses.
	BytesStreamed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filedrop_bytes_streamed_total",
		Help: "Payload bytes streamed to clients.",
	})

	// ThumbnailFailures counts thumbnail generations that did not produce an image.
	ThumbnailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filedrop_thumbnail_failures_total",
		Help: "Number of failed thumbnail generations.",
	})
)

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
