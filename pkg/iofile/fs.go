package iofile

import (
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/arthur-debert/rulekit/pkg/errors"
	"github.com/arthur-debert/rulekit/pkg/logging"
)

// Check validates a concrete path. Empty paths and paths spanning lines
// fail; redundant "./" prefixes and surrounding whitespace only warn since
// they break matching in surprising ways without being invalid.
func (p *Pattern) Check() error {
	path := p.Path()
	if isBlank(path) {
		return errors.New(errors.ErrInvalidFile, "empty file path").
			WithDetail(errors.DetailRule, p.rule)
	}
	if strings.ContainsAny(path, "\r\n") {
		return errors.Newf(errors.ErrInvalidFile, "file path %q contains a line break", path).
			WithDetail(errors.DetailRule, p.rule)
	}

	logger := logging.GetLogger("iofile")
	if strings.HasPrefix(path, "./") {
		logger.Warn().
			Str("path", path).
			Str("rule", p.rule).
			Msg("Relative file path starts with './', which is redundant and breaks target matching")
	}
	if strings.TrimSpace(path) != path {
		logger.Warn().
			Str("path", path).
			Str("rule", p.rule).
			Msg("File path has leading or trailing whitespace")
	}
	return nil
}

func (p *Pattern) concretePath() (string, error) {
	if p.HasWildcards() {
		return "", errors.Newf(errors.ErrInvalidFile,
			"%s still contains wildcards", p.String()).
			WithDetail(errors.DetailMissing, p.WildcardNames())
	}
	return p.Path(), nil
}

// Exists reports whether the concrete file exists on fs.
func (p *Pattern) Exists(fs afero.Fs) (bool, error) {
	path, err := p.concretePath()
	if err != nil {
		return false, err
	}
	return afero.Exists(fs, path)
}

// Mtime returns the modification time of the concrete file.
func (p *Pattern) Mtime(fs afero.Fs) (time.Time, error) {
	path, err := p.concretePath()
	if err != nil {
		return time.Time{}, err
	}
	info, err := fs.Stat(path)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, errors.ErrNotFound, "stat %s", path)
	}
	return info.ModTime(), nil
}

// Size returns the size in bytes of the concrete file.
func (p *Pattern) Size(fs afero.Fs) (int64, error) {
	path, err := p.concretePath()
	if err != nil {
		return 0, err
	}
	info, err := fs.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrNotFound, "stat %s", path)
	}
	return info.Size(), nil
}
