package config

import (
	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/rulekit/pkg/errors"
)

// ToTOML serialises the configuration in the same layout as the defaults.
func (c *Config) ToTOML() ([]byte, error) {
	data, err := gotoml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
	}
	return data, nil
}
