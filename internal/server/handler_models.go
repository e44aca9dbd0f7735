package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"openai2local/internal/core"
	"openai2local/internal/transform"

	"github.com/gin-gonic/gin"
)

const modelListCacheKey = "models:" + core.CacheKeyVersion

// listModels forwards the backend's model listing with every identifier
// mapped back to its external name. This endpoint never errors: any failure
// falls back to a static single-entry list, trading correctness for
// availability on a non-critical listing.
func (s *Server) listModels(c *gin.Context) {
	if cached, found := s.cache.Get(modelListCacheKey); found {
		if body, ok := cached.(transform.Body); ok {
			c.JSON(http.StatusOK, body)
			return
		}
	}

	body, err := s.fetchBackendModels(c.Request.Context())
	if err != nil {
		s.config.Logger.Error("Error listing models: %v", err)
		c.JSON(http.StatusOK, s.fallbackModelList())
		return
	}

	s.cache.Set(modelListCacheKey, body, core.ModelListCacheTTL)
	c.JSON(http.StatusOK, body)
}

func (s *Server) fetchBackendModels(ctx context.Context) (transform.Body, error) {
	resp, err := s.forwarder.Forward(ctx, http.MethodGet, core.PathModels, nil, nil, false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	raw, err := readLimitedBody(resp)
	if err != nil {
		return nil, err
	}

	body, err := transform.ParseBody(raw)
	if err != nil {
		return nil, err
	}

	if entries, ok := body["data"].([]any); ok {
		for _, entry := range entries {
			model, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := model["id"].(string); ok {
				model["id"] = s.mapper.ToExternal(id)
			}
		}
	}

	return body, nil
}

func (s *Server) fallbackModelList() core.ModelList {
	return core.ModelList{
		Object: core.ModelListObjectType,
		Data: []core.ModelInfo{
			{
				ID:      core.DefaultChatModel,
				Object:  core.ModelObjectType,
				Created: time.Now().Unix(),
				OwnedBy: core.FallbackModelOwner,
			},
		},
	}
}
