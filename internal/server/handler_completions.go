package server

import (
	"io"
	"net/http"
	"time"

	"openai2local/internal/core"
	"openai2local/internal/stream"
	"openai2local/internal/transform"

	"github.com/gin-gonic/gin"
)

func (s *Server) chatCompletions(c *gin.Context) {
	s.handleCompletionRequest(c, core.PathChatCompletions, core.DefaultChatModel, true)
}

func (s *Server) completions(c *gin.Context) {
	s.handleCompletionRequest(c, core.PathCompletions, core.DefaultCompletionModel, true)
}

func (s *Server) embeddings(c *gin.Context) {
	s.handleCompletionRequest(c, core.PathEmbeddings, core.DefaultEmbeddingModel, false)
}

// handleCompletionRequest is the shared normalize/forward/respond pipeline.
// defaultModel is the external name assumed when the request has none; it
// becomes the model reported back to the client. allowStream gates SSE relay
// (embeddings never stream).
func (s *Server) handleCompletionRequest(c *gin.Context, path, defaultModel string, allowStream bool) {
	startTime := time.Now()

	raw, err := c.GetRawData()
	if err != nil {
		s.recordRequest(false, startTime, "", path)
		respondWithDetail(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	body, err := transform.ParseBody(raw)
	if err != nil {
		s.recordRequest(false, startTime, "", path)
		respondWithDetail(c, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	originalModel, ok := body.Model()
	if !ok {
		originalModel = defaultModel
	}
	streaming := allowStream && body.Stream()

	payload, err := s.reqNorm.Normalize(body).Marshal()
	if err != nil {
		s.recordRequest(false, startTime, originalModel, path)
		s.config.Logger.Error("Failed to marshal normalized request: %v", err)
		respondWithDetail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	resp, err := s.forwarder.Forward(c.Request.Context(), http.MethodPost, path, payload, c.Request.Header, streaming)
	if err != nil {
		s.recordRequest(false, startTime, originalModel, path)
		s.respondForwardError(c, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		s.recordRequest(false, startTime, originalModel, path)
		respondWithDetail(c, resp.StatusCode, backendErrorText(resp, s.config.Logger))
		return
	}

	if streaming {
		s.relayStream(c, resp, originalModel, path, startTime)
		return
	}

	respBody, err := readLimitedBody(resp)
	if err != nil {
		s.recordRequest(false, startTime, originalModel, path)
		s.config.Logger.Error("Failed to read backend response: %v", err)
		respondWithDetail(c, http.StatusBadGateway, "Backend error: failed to read response")
		return
	}

	parsed, err := transform.ParseBody(respBody)
	if err != nil {
		s.recordRequest(false, startTime, originalModel, path)
		s.config.Logger.Error("Backend returned unparseable JSON: %v", err)
		respondWithDetail(c, http.StatusBadGateway, "Backend error: invalid JSON response")
		return
	}

	out, err := s.respNorm.Normalize(parsed, originalModel).Marshal()
	if err != nil {
		s.recordRequest(false, startTime, originalModel, path)
		s.config.Logger.Error("Failed to marshal normalized response: %v", err)
		respondWithDetail(c, http.StatusInternalServerError, "internal server error")
		return
	}

	s.recordRequest(true, startTime, originalModel, path)
	c.Data(http.StatusOK, core.ContentTypeJSON, out)
}

// relayStream pumps the backend SSE stream through the transformer one event
// per unit of client demand. gin's Stream flushes after each write and stops
// when the client disconnects, which cancels the request context and stops
// backend reads promptly.
func (s *Server) relayStream(c *gin.Context, resp *http.Response, originalModel, path string, startTime time.Time) {
	setStreamingHeaders(c)

	transformer := stream.NewTransformer(resp.Body, originalModel, s.config.Logger)
	defer func() { _ = transformer.Close() }()

	ctx := c.Request.Context()
	relayErr := error(nil)

	c.Stream(func(w io.Writer) bool {
		event, err := transformer.Next(ctx)
		if err != nil {
			if err != io.EOF {
				relayErr = err
			}
			return false
		}
		_, _ = w.Write(event)
		return true
	})

	if relayErr != nil {
		if ctx.Err() != nil {
			s.config.Logger.Debug("Client disconnected during streaming: %v", relayErr)
		} else {
			s.config.Logger.Error("Stream relay error: %v", relayErr)
		}
	}

	s.recordRequest(relayErr == nil, startTime, originalModel, path)
}
