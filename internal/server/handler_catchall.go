package server

import (
	"net/http"
	"time"

	"openai2local/internal/core"
	"openai2local/internal/transform"

	"github.com/gin-gonic/gin"
)

// catchAll forwards any unhandled endpoint verbatim to the backend. The
// request body is normalized only when it is a JSON object carrying a model
// field; everything else rides through untouched. A 200 response is returned
// as parsed JSON when parseable, else as raw bytes with the original status.
func (s *Server) catchAll(c *gin.Context) {
	startTime := time.Now()
	method := c.Request.Method
	path := c.Request.URL.Path

	var payload []byte
	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		if raw, err := c.GetRawData(); err == nil && len(raw) > 0 {
			payload = raw
			if body, err := transform.ParseBody(raw); err == nil {
				if _, hasModel := body.Model(); hasModel {
					if normalized, err := s.reqNorm.Normalize(body).Marshal(); err == nil {
						payload = normalized
					}
				}
			}
		}
	}

	resp, err := s.forwarder.Forward(c.Request.Context(), method, path, payload, c.Request.Header, false)
	if err != nil {
		s.recordRequest(false, startTime, "", path)
		s.respondForwardError(c, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := readLimitedBody(resp)
	if err != nil {
		s.recordRequest(false, startTime, "", path)
		s.config.Logger.Error("Failed to read backend response for %s: %v", path, err)
		respondWithDetail(c, http.StatusBadGateway, "Backend error: failed to read response")
		return
	}

	if resp.StatusCode != http.StatusOK {
		s.recordRequest(false, startTime, "", path)
		respondWithDetail(c, resp.StatusCode, string(respBody))
		return
	}

	s.recordRequest(true, startTime, "", path)
	if _, parseErr := transform.ParseBody(respBody); parseErr == nil {
		c.Data(http.StatusOK, core.ContentTypeJSON, respBody)
		return
	}

	contentType := resp.Header.Get(core.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, respBody)
}
