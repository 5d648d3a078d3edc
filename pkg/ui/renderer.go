package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/rulekit/pkg/errors"
)

// Renderer is the common interface for all output renderers.
type Renderer interface {
	// RenderResult renders a view struct or a job
	RenderResult(result interface{}) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a new renderer based on the specified format.
// It automatically detects terminal capabilities when format is Auto.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		// buffers and pipes get plain text
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return &consoleRenderer{output: output}, nil
	case FormatText:
		return &consoleRenderer{output: output, plain: true}, nil
	case FormatJSON:
		return newJSONRenderer(output), nil
	case FormatYAML:
		return &yamlRenderer{output: output}, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}

// errorView is how structured renderers encode errors.
type errorView struct {
	Error   string                 `json:"error" yaml:"error"`
	Code    string                 `json:"code" yaml:"code"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

func newErrorView(err error) errorView {
	return errorView{
		Error:   err.Error(),
		Code:    string(errors.GetErrorCode(err)),
		Details: errors.GetErrorDetails(err),
	}
}
