package recallbricks

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/recallbricks/internal/sanitize"
)

const (
	capturePrefix      = "[AUTO-CAPTURE]"
	captureErrorPrefix = "[AUTO-CAPTURE-ERROR]"
)

// CaptureOptions selects what Capture records.
type CaptureOptions struct {
	Inputs  bool
	Outputs bool
	Errors  bool
}

// DefaultCaptureOptions records inputs, outputs and errors.
func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{Inputs: true, Outputs: true, Errors: true}
}

// Capture wraps fn so that its input, result and error are saved as
// memories. Capture never alters what fn returns: a failed save is logged
// and dropped.
//
//	lookup := recallbricks.Capture(client, "lookup", lookupUser, recallbricks.DefaultCaptureOptions())
//	user, err := lookup(ctx, "u-42")
func Capture[In, Out any](c *Client, name string, fn func(context.Context, In) (Out, error), opts CaptureOptions) func(context.Context, In) (Out, error) {
	return func(ctx context.Context, in In) (Out, error) {
		if opts.Inputs {
			c.capture(ctx, name, fmt.Sprintf("%s Function: %s, Args: %s", capturePrefix, name, captureValue(in)))
		}

		out, err := fn(ctx, in)

		switch {
		case err != nil && opts.Errors:
			c.capture(ctx, name, fmt.Sprintf("%s Function: %s, Error: %s", captureErrorPrefix, name, sanitize.Content(err.Error())))
		case err == nil && opts.Outputs:
			c.capture(ctx, name, fmt.Sprintf("%s Function: %s, Result: %s", capturePrefix, name, captureValue(out)))
		}
		return out, err
	}
}

func (c *Client) capture(ctx context.Context, name, text string) {
	if _, err := c.Save(ctx, text, SaveOptions{Source: defaultSaveSource}); err != nil {
		c.logger.Warn("auto-capture failed",
			zap.String("function", name),
			zap.Error(err),
		)
	}
}

// captureValue renders v as JSON, falling back to %v for values JSON
// cannot encode.
func captureValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return sanitize.Content(fmt.Sprintf("%v", v))
	}
	return sanitize.Content(string(b))
}
