package file

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/filedrop/filedrop/internal/metrics"
	"github.com/filedrop/filedrop/internal/object"
)

// RegisterRoutes mounts the file API under the provided router group. The
// auth middleware guards the mutating endpoints only.
func RegisterRoutes(group *gin.RouterGroup, service *Service, authMW gin.HandlerFunc, log *zap.Logger) {
	handler := &httpHandler{service: service, log: log}

	group.GET("/ping", handler.ping)
	group.GET("/raw/:code", handler.raw)
	group.GET("/download/:code", handler.download)
	group.GET("/info/:code", handler.info)
	group.GET("/list", handler.list)
	group.GET("/search/:param", handler.search)
	group.GET("/thumbnail/:code", handler.thumbnail)

	protected := group.Group("/")
	protected.Use(authMW)
	protected.POST("/upload", handler.upload)
	protected.PUT("/rename/:code", handler.rename)
	protected.DELETE("/delete/:code", handler.delete)
}

type httpHandler struct {
	service *Service
	log     *zap.Logger
}

func (h *httpHandler) ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

func (h *httpHandler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.String(http.StatusBadRequest, "No file found")
		return
	}

	handle, err := h.service.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		h.log.Error("upload failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Error")
		return
	}

	c.String(http.StatusOK, h.service.URL(handle.Code))
}

// raw serves the object inline, honoring byte ranges for streamable media.
func (h *httpHandler) raw(c *gin.Context) {
	handle, err := h.service.Resolve(c.Param("code"))
	if err != nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}

	ctype := contentTypeFor(handle.ContentName)
	stat, err := os.Stat(handle.ContentPath)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error")
		return
	}
	size := stat.Size()

	rangeHeader := c.GetHeader("Range")
	if isStreamable(ctype) && rangeHeader != "" {
		br, err := parseRange(rangeHeader, size)
		if err != nil {
			// the unsatisfiable bound is the whole 416 response
			c.Header("Content-Range", fmt.Sprintf("bytes */%d", size))
			c.Status(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		setNoCache(c)
		c.Header("Accept-Ranges", "bytes")
		c.Header("Content-Disposition", "inline")
		h.streamPartial(c, handle, ctype, br, size)
		return
	}

	setNoCache(c)
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Disposition", "inline")

	f, err := os.Open(handle.ContentPath)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error")
		return
	}
	defer f.Close()

	c.Header("Content-Type", ctype)
	c.Header("Content-Length", fmt.Sprintf("%d", size))
	c.Status(http.StatusOK)

	written, err := io.Copy(c.Writer, f)
	metrics.BytesStreamed.Add(float64(written))
	if err != nil {
		// Headers are already out; nothing to change, just log.
		h.log.Warn("stream aborted", zap.String("code", handle.Code), zap.Error(err))
	}
}

func (h *httpHandler) streamPartial(c *gin.Context, handle object.Handle, ctype string, br byteRange, size int64) {
	f, err := os.Open(handle.ContentPath)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error")
		return
	}
	defer f.Close()

	if _, err := f.Seek(br.start, io.SeekStart); err != nil {
		c.String(http.StatusInternalServerError, "Error")
		return
	}

	c.Header("Content-Type", ctype)
	c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.start, br.end, size))
	c.Header("Content-Length", fmt.Sprintf("%d", br.length()))
	c.Status(http.StatusPartialContent)
	metrics.RangeRequests.Inc()

	written, err := io.CopyN(c.Writer, f, br.length())
	metrics.BytesStreamed.Add(float64(written))
	if err != nil {
		h.log.Warn("partial stream aborted", zap.String("code", handle.Code), zap.Error(err))
	}
}

// download serves the object as an attachment and counts the download.
func (h *httpHandler) download(c *gin.Context) {
	handle, err := h.service.Resolve(c.Param("code"))
	if err != nil {
		c.String(http.StatusNotFound, "File not found")
		return
	}

	if _, err := h.service.RecordDownload(handle.Code); err != nil {
		h.log.Warn("record download", zap.String("code", handle.Code), zap.Error(err))
	}

	f, err := os.Open(handle.ContentPath)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error")
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error")
		return
	}

	setNoCache(c)
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(handle.ContentName)))
	c.Header("Content-Length", fmt.Sprintf("%d", stat.Size()))
	c.Status(http.StatusOK)

	written, err := io.Copy(c.Writer, f)
	metrics.BytesStreamed.Add(float64(written))
	if err != nil {
		h.log.Warn("download aborted", zap.String("code", handle.Code), zap.Error(err))
	}
}

func (h *httpHandler) info(c *gin.Context) {
	handle, err := h.service.Resolve(c.Param("code"))
	if err != nil {
		c.String(http.StatusNotFound, "File Not found")
		return
	}

	info, err := h.service.Info(handle)
	if err != nil {
		h.log.Error("build info", zap.String("code", handle.Code), zap.Error(err))
		c.String(http.StatusInternalServerError, "Error")
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *httpHandler) list(c *gin.Context) {
	infos, err := h.service.List()
	if err != nil {
		h.log.Error("list objects", zap.Error(err))
		c.String(http.StatusInternalServerError, "Error")
		return
	}
	c.JSON(http.StatusOK, infos)
}

func (h *httpHandler) search(c *gin.Context) {
	results, err := h.service.Search(c.Param("param"))
	if err != nil {
		h.log.Error("search objects", zap.Error(err))
		c.String(http.StatusInternalServerError, "Error")
		return
	}
	if len(results) == 0 {
		c.String(http.StatusNotFound, "No files found")
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *httpHandler) rename(c *gin.Context) {
	newName := c.Query("name")
	if newName == "" {
		c.String(http.StatusBadRequest, "Name not provided")
		return
	}

	handle, err := h.service.Rename(c.Param("code"), newName)
	switch {
	case err == nil:
	case err == object.ErrNotFound:
		c.String(http.StatusNotFound, "File not found")
		return
	case err == object.ErrCodeTaken:
		c.String(http.StatusConflict, "Target code already exists")
		return
	default:
		h.log.Error("rename failed", zap.String("code", c.Param("code")), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": handle.Code,
		"url":  h.service.URL(handle.Code),
	})
}

func (h *httpHandler) delete(c *gin.Context) {
	err := h.service.Delete(c.Param("code"))
	switch {
	case err == nil:
		c.String(http.StatusOK, "done")
	case err == object.ErrNotFound:
		c.String(http.StatusNotFound, "File not found")
	default:
		h.log.Error("delete failed", zap.String("code", c.Param("code")), zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
	}
}

func (h *httpHandler) thumbnail(c *gin.Context) {
	handle, err := h.service.Resolve(c.Param("code"))
	if err != nil || !handle.HasThumbnail {
		c.String(http.StatusNotFound, "File not found")
		return
	}

	c.Header("Content-Disposition", "inline")
	c.File(handle.ThumbnailPath)
}

func setNoCache(c *gin.Context) {
	c.Header("Cache-Control", "public, no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}
