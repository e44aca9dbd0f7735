package transform

import (
	"time"

	"openai2local/internal/core"
	"openai2local/internal/util"
)

// ResponseNormalizer rewrites a backend response body into the external wire
// shape: restores the client's model name and back-fills the required fields
// local backends commonly omit (object, created, usage). Each step is
// idempotent, so normalizing twice produces the same result.
type ResponseNormalizer struct {
	logBody bool
	logger  core.Logger
	now     func() int64
}

// NewResponseNormalizer creates a ResponseNormalizer.
func NewResponseNormalizer(logBody bool, logger core.Logger) *ResponseNormalizer {
	return &ResponseNormalizer{
		logBody: logBody,
		logger:  logger,
		now:     func() int64 { return time.Now().Unix() },
	}
}

// Normalize returns a new body in external shape. originalModel is the model
// name the client sent; it overwrites whatever the backend reported. The
// input body is not mutated.
func (n *ResponseNormalizer) Normalize(body Body, originalModel string) Body {
	normalized := body.Clone()

	if _, ok := normalized[core.FieldModel]; ok {
		normalized[core.FieldModel] = originalModel
	}

	if _, ok := normalized[core.FieldObject]; !ok {
		if _, hasChoices := normalized[core.FieldChoices]; hasChoices {
			normalized[core.FieldObject] = core.ChatCompletionObjectType
		}
	}

	if _, ok := normalized[core.FieldCreated]; !ok {
		normalized[core.FieldCreated] = n.now()
	}

	if _, ok := normalized[core.FieldUsage]; !ok {
		if usage, ok := estimateUsage(normalized); ok {
			normalized[core.FieldUsage] = usage
		}
	}

	if n.logBody {
		if data, err := normalized.Marshal(); err == nil {
			n.logger.Debug("Transformed response: %s", logBodyText(data))
		}
	}

	return normalized
}

// estimateUsage synthesizes a usage block from the first choice's text. The
// completion count is a whitespace word count, not a tokenizer count; callers
// must not treat it as billing-accurate. prompt_tokens stays 0 because the
// prompt never reaches this side of the relay.
func estimateUsage(body Body) (core.Usage, bool) {
	choices, ok := body[core.FieldChoices].([]any)
	if !ok || len(choices) == 0 {
		return core.Usage{}, false
	}

	first, ok := choices[0].(map[string]any)
	if !ok {
		return core.Usage{}, false
	}

	var content string
	if message, ok := first[core.FieldMessage].(map[string]any); ok {
		content, _ = message[core.FieldContent].(string)
	} else if text, ok := first[core.FieldText].(string); ok {
		content = text
	}

	tokens := util.CountWords(content)
	return core.Usage{
		PromptTokens:     0,
		CompletionTokens: tokens,
		TotalTokens:      tokens,
	}, true
}
