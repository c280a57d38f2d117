package parsers

import (
	"fmt"
	"path/filepath"
	"regexp"

	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/pkg/errors"
	"golang-statement-extractor/pkg/logger"
)

// Selection is the outcome of matching a file name against the registry
type Selection struct {
	Format *FormatConfig
	Period models.StatementPeriod
}

// Registry selects a statement format from a document's file name
type Registry struct {
	formats  []*FormatConfig
	patterns []*regexp.Regexp
	logger   logger.Logger
}

// NewRegistry validates and compiles the given formats. Order is kept for
// listing; selection does not depend on it.
func NewRegistry(formats []*FormatConfig, log logger.Logger) (*Registry, error) {
	if len(formats) == 0 {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "formats", nil, nil)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	r := &Registry{
		formats:  formats,
		patterns: make([]*regexp.Regexp, len(formats)),
		logger:   log.WithComponent("registry"),
	}

	seen := make(map[string]bool)
	for i, fc := range formats {
		if err := fc.Validate(); err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "format", fc.Name, err)
		}
		if seen[fc.Name] {
			return nil, errors.ConfigurationError(errors.CodeConfigConflict, "format", fc.Name,
				fmt.Errorf("duplicate format name"))
		}
		seen[fc.Name] = true
		r.patterns[i] = regexp.MustCompile(fc.FilePattern)
	}

	return r, nil
}

// Formats returns the registered formats
func (r *Registry) Formats() []*FormatConfig {
	return r.formats
}

// Select matches the base name of path against every format. Exactly one
// format must match.
func (r *Registry) Select(path string) (*Selection, error) {
	name := filepath.Base(path)

	var matched []int
	for i, re := range r.patterns {
		if re.MatchString(name) {
			matched = append(matched, i)
		}
	}

	switch len(matched) {
	case 0:
		return nil, errors.DispatchError(errors.CodeNoMatchingFormat, name, nil)
	case 1:
	default:
		names := make([]string, len(matched))
		for i, idx := range matched {
			names[i] = r.formats[idx].Name
		}
		return nil, errors.DispatchError(errors.CodeAmbiguousFormat, name, names)
	}

	idx := matched[0]
	fc := r.formats[idx]
	re := r.patterns[idx]
	value := re.FindStringSubmatch(name)[re.SubexpIndex("date")]

	period, err := models.ParseStatementPeriod(fc.PeriodLayout, value)
	if err != nil {
		dispatchErr := errors.DispatchError(errors.CodeInvalidPeriod, name, nil)
		dispatchErr.Cause = err
		return nil, dispatchErr
	}

	r.logger.WithFields(logger.Fields{
		"file":   name,
		"format": fc.Name,
		"period": period.String(),
	}).Debug("Selected statement format")

	return &Selection{Format: fc, Period: period}, nil
}

// NewInterpreter returns the row interpreter for a format
func NewInterpreter(fc *FormatConfig, log logger.Logger) (RowInterpreter, error) {
	switch fc.Variant {
	case VariantInline:
		interpreter, err := NewInlineInterpreter(fc, log)
		if err != nil {
			return nil, err
		}
		return interpreter, nil
	case VariantLookahead:
		interpreter, err := NewLookaheadInterpreter(fc, log)
		if err != nil {
			return nil, err
		}
		return interpreter, nil
	default:
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "variant", fc.Variant, nil)
	}
}
