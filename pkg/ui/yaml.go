package ui

import (
	"io"

	"gopkg.in/yaml.v3"
)

// yamlRenderer writes one YAML document per call.
type yamlRenderer struct {
	output io.Writer
}

func (r *yamlRenderer) encode(v interface{}) error {
	enc := yaml.NewEncoder(r.output)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (r *yamlRenderer) RenderResult(result interface{}) error {
	return r.encode(result)
}

func (r *yamlRenderer) RenderError(err error) error {
	return r.encode(newErrorView(err))
}

func (r *yamlRenderer) RenderMessage(msg string) error {
	return r.encode(map[string]string{"message": msg})
}
