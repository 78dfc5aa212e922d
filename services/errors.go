package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every ConfigError.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrSkippedEntry is matched by every EntryError.
	ErrSkippedEntry = errors.New("entry skipped")
)

// ConfigError reports a caller bug in extraction or run settings. It is
// returned before any work starts.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// EntryError describes a raw entry the extractor dropped.
type EntryError struct {
	Index  int
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d: %s", e.Index, e.Reason)
}

func (e *EntryError) Unwrap() error { return ErrSkippedEntry }
