package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"openai2local/internal/core"
	"openai2local/internal/forward"

	"github.com/gin-gonic/gin"
)

// setStreamingHeaders sets streaming response HTTP headers
func setStreamingHeaders(c *gin.Context) {
	c.Header(core.HeaderContentType, core.ContentTypeEventStream)
	c.Header(core.HeaderCacheControl, core.CacheControlNoCache)
	c.Header(core.HeaderConnection, core.ConnectionKeepAlive)
}

// respondWithDetail returns the JSON error shape used on every error path.
func respondWithDetail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"detail": message})
}

// respondForwardError converts a forwarder error into its HTTP condition:
// unsupported method 405, timeout 504, unreachable 502, anything else 500.
func (s *Server) respondForwardError(c *gin.Context, err error) {
	var methodErr *forward.MethodError
	var timeoutErr *forward.TimeoutError
	var unreachableErr *forward.UnreachableError

	switch {
	case errors.As(err, &methodErr):
		respondWithDetail(c, http.StatusMethodNotAllowed, methodErr.Error())
	case errors.As(err, &timeoutErr):
		respondWithDetail(c, http.StatusGatewayTimeout, "Backend timeout")
	case errors.As(err, &unreachableErr):
		respondWithDetail(c, http.StatusBadGateway, "Backend error: "+unreachableErr.Cause.Error())
	default:
		respondWithDetail(c, http.StatusInternalServerError, err.Error())
	}
}

// readLimitedBody drains the backend response body up to the configured cap.
func readLimitedBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
}

// backendErrorText extracts the backend's response text for non-200 statuses
// so the status and message propagate to the client unchanged.
func backendErrorText(resp *http.Response, logger core.Logger) string {
	body, _ := readLimitedBody(resp)
	logger.Error("Backend error: status=%d, body=%s", resp.StatusCode, string(body))
	return string(body)
}

// recordRequest records one handled request in the stats service.
func (s *Server) recordRequest(success bool, startTime time.Time, model, endpoint string) {
	s.metricsService.RecordRequest(success, time.Since(startTime).Milliseconds(), model, endpoint)
}
