package transform

import (
	"openai2local/internal/core"
	"openai2local/internal/mapping"
	"openai2local/internal/util"
)

// Debug body logs are truncated so a large prompt or completion does not
// flood the log output.
const (
	logBodyPrefixLen = 2048
	logBodySuffixLen = 256
	logBodyEllipsis  = " ...[truncated]... "
)

func logBodyText(data []byte) string {
	return util.TruncateString(string(data), logBodyPrefixLen, logBodySuffixLen, logBodyEllipsis)
}

// RequestNormalizer rewrites an inbound request body into backend form:
// the model field is mapped to the internal name, a missing model field is
// filled with the configured default. All other fields pass through
// unvalidated; validation is the backend's responsibility.
type RequestNormalizer struct {
	mapper       *mapping.Mapper
	defaultModel string
	logBody      bool
	logger       core.Logger
}

// NewRequestNormalizer creates a RequestNormalizer.
func NewRequestNormalizer(mapper *mapping.Mapper, defaultModel string, logBody bool, logger core.Logger) *RequestNormalizer {
	return &RequestNormalizer{
		mapper:       mapper,
		defaultModel: defaultModel,
		logBody:      logBody,
		logger:       logger,
	}
}

// Normalize returns a new body with the model substituted. The input body is
// not mutated.
func (n *RequestNormalizer) Normalize(body Body) Body {
	normalized := body.Clone()

	if model, ok := normalized.Model(); ok {
		normalized[core.FieldModel] = n.mapper.ToInternal(model)
	} else {
		normalized[core.FieldModel] = n.defaultModel
	}

	if n.logBody {
		if data, err := normalized.Marshal(); err == nil {
			n.logger.Debug("Transformed request: %s", logBodyText(data))
		}
	}

	return normalized
}
