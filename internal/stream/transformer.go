// Package stream relays a backend SSE response chunk by chunk, rewriting each
// event into the external wire shape.
package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"openai2local/internal/core"
	"openai2local/internal/util"
)

// chunk is the parse result for one SSE data payload. Parsing never raises:
// a payload is either the terminal sentinel, a parsed JSON object, or raw
// pass-through text.
type chunk struct {
	kind chunkKind
	obj  map[string]any
	raw  string
}

type chunkKind int

const (
	chunkDone chunkKind = iota
	chunkParsed
	chunkRaw
)

func parseChunk(data string) chunk {
	if data == core.StreamChunkDoneMessage {
		return chunk{kind: chunkDone}
	}

	var obj map[string]any
	if err := util.UnmarshalJSON([]byte(data), &obj); err != nil {
		return chunk{kind: chunkRaw, raw: data}
	}
	return chunk{kind: chunkParsed, obj: obj}
}

// Transformer consumes backend SSE lines and re-emits externally shaped
// events one per call. It is strictly pull-driven: nothing is read from the
// backend until the consumer asks for the next event, so outbound
// backpressure propagates to the backend connection. A Transformer is tied to
// one response body and is not restartable.
type Transformer struct {
	scanner       *bufio.Scanner
	body          io.Closer
	originalModel string
	logger        core.Logger
	finished      bool
	closed        bool
}

// NewTransformer creates a Transformer over the backend response body. The
// caller owns closing via Close.
func NewTransformer(body io.ReadCloser, originalModel string, logger core.Logger) *Transformer {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, core.MaxScannerBufferSize), core.MaxScannerBufferSize)

	return &Transformer{
		scanner:       scanner,
		body:          body,
		originalModel: originalModel,
		logger:        logger,
	}
}

// Next returns the next framed event line ("data: ...\n\n"). It returns
// io.EOF when the backend stream ends or after the terminal sentinel has been
// emitted. Blank lines and lines without the data prefix produce no output
// and are consumed until an emittable event arrives.
func (t *Transformer) Next(ctx context.Context) ([]byte, error) {
	if t.finished {
		return nil, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !t.scanner.Scan() {
			t.finished = true
			if err := t.scanner.Err(); err != nil {
				return nil, fmt.Errorf("stream read error: %w", err)
			}
			return nil, io.EOF
		}

		line := t.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !strings.HasPrefix(line, core.StreamChunkPrefix) {
			// Out of contract for the backend; dropped rather than
			// forwarded as malformed framing.
			continue
		}

		data := strings.TrimPrefix(line, core.StreamChunkPrefix)

		switch c := parseChunk(strings.TrimSpace(data)); c.kind {
		case chunkDone:
			t.finished = true
			return frameEvent(core.StreamChunkDoneMessage), nil
		case chunkParsed:
			if _, ok := c.obj[core.FieldModel]; ok {
				c.obj[core.FieldModel] = t.originalModel
			}
			payload, err := util.MarshalJSON(c.obj)
			if err != nil {
				// Re-marshalling what sonic just parsed should not fail;
				// degrade to pass-through like any unparseable chunk.
				t.logger.Warn("Failed to re-marshal stream chunk: %v", err)
				return frameEvent(data), nil
			}
			return frameEvent(string(payload)), nil
		default:
			return frameEvent(data), nil
		}
	}
}

// Close releases the underlying backend response body. Safe to call more
// than once.
func (t *Transformer) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.finished = true
	return t.body.Close()
}

func frameEvent(data string) []byte {
	return []byte(core.StreamChunkPrefix + data + "\n\n")
}
