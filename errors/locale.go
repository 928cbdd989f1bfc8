package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateLocale   = errors.New("locale already registered")
	ErrUnknownLocale     = errors.New("unknown locale")
	ErrInvalidTransition = errors.New("invalid registry transition")
	ErrStaleLoad         = errors.New("stale load result")
	ErrAbandoned         = errors.New("load abandoned")
)

type LoadErrorKind int

const (
	// SourceUnavailable is reported when the transport answered with a non-success status.
	SourceUnavailable LoadErrorKind = iota + 1
	// Unreachable is reported when the transport itself failed.
	Unreachable
	// MalformedCatalog is reported when the body is not a key/value document.
	MalformedCatalog
)

func (k LoadErrorKind) String() string {
	switch k {
	case SourceUnavailable:
		return "source_unavailable"
	case Unreachable:
		return "unreachable"
	case MalformedCatalog:
		return "malformed_catalog"
	default:
		return "unknown"
	}
}

// LoadError is a recoverable, per-locale failure. It is stored in the
// registry entry and never aborts startup.
type LoadError struct {
	Locale string
	Kind   LoadErrorKind
	Status int
	Cause  error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("locale %s: %s", e.Locale, e.Kind)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

func NewLoadError(locale string, kind LoadErrorKind, cause error) error {
	return &LoadError{Locale: locale, Kind: kind, Cause: cause}
}

func NewStatusError(locale string, status int) error {
	return &LoadError{Locale: locale, Kind: SourceUnavailable, Status: status}
}

// IsLoadError reports whether err carries a LoadError of the given kind.
func IsLoadError(err error, kind LoadErrorKind) bool {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}

// ConfigError is fatal: a bad source kind or malformed embedded/bundled data.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return "configuration error: " + e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func Config(format string, args ...any) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

func WrapConfig(cause error, format string, args ...any) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Is is a shortcut for the standard library errors.Is.
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
