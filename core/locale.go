package f

import (
	"io/fs"
	"path"
	"strings"
	"time"
)

type LocaleCode string

// MessageKey is a dotted path such as "menu.title".
type MessageKey = string

func (c LocaleCode) String() string {
	return string(c)
}

type SourceKind int

const (
	SourceEmbedded SourceKind = iota + 1
	SourceRemote
	SourceBundled
)

func (k SourceKind) String() string {
	switch k {
	case SourceEmbedded:
		return "embedded"
	case SourceRemote:
		return "remote"
	case SourceBundled:
		return "bundled"
	default:
		return "unknown"
	}
}

func ParseSourceKind(value string) (SourceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "embedded":
		return SourceEmbedded, true
	case "remote":
		return SourceRemote, true
	case "bundled":
		return SourceBundled, true
	}
	return 0, false
}

// LocaleSource describes where the catalog of one locale comes from.
// It is fixed at configuration time.
type LocaleSource struct {
	Code   LocaleCode
	Kind   SourceKind
	Data   []byte
	URL    string
	FS     fs.FS
	Path   string
	Format string
}

// FormatOf guesses the catalog format from a file name or URL path.
func FormatOf(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "toml":
		return "toml"
	case "yaml", "yml":
		return "yaml"
	default:
		return "json"
	}
}

type LoadStatus int

const (
	Unloaded LoadStatus = iota
	Loading
	Loaded
	Failed
)

func (s LoadStatus) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no load is pending for the entry.
func (s LoadStatus) Terminal() bool {
	return s == Loaded || s == Failed
}

// RegistryEntry is an immutable snapshot of one locale in the registry.
type RegistryEntry struct {
	Code       LocaleCode
	Source     LocaleSource
	Status     LoadStatus
	Catalog    *Catalog
	Err        error
	Generation uint64
}

// FallbackChain is the ordered list of locales consulted for a key.
type FallbackChain []LocaleCode

// NewFallbackChain puts active first, then the fallbacks in order, dropping
// blanks and duplicates.
func NewFallbackChain(active LocaleCode, fallbacks ...LocaleCode) FallbackChain {
	seen := make(map[LocaleCode]struct{}, len(fallbacks)+1)
	chain := make(FallbackChain, 0, len(fallbacks)+1)
	for _, code := range append([]LocaleCode{active}, fallbacks...) {
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		chain = append(chain, code)
	}
	return chain
}

func (c FallbackChain) Active() LocaleCode {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

func (c FallbackChain) Contains(code LocaleCode) bool {
	for _, item := range c {
		if item == code {
			return true
		}
	}
	return false
}

type BootstrapPolicy string

const (
	PolicyBlocking BootstrapPolicy = "blocking"
	PolicyEager    BootstrapPolicy = "eager"
)

type MissPolicy string

const (
	MissAsKey   MissPolicy = "key"
	MissAsEmpty MissPolicy = "empty"
)

// LocalesConfig is the static input of the source resolver and the bootstrap sequencer.
type LocalesConfig struct {
	Active    LocaleCode
	Fallbacks []LocaleCode
	Supported []LocaleCode
	// Sources maps a locale to its source kind name: embedded, remote or bundled.
	Sources map[LocaleCode]string
	// Embedded holds literal catalog documents (JSON) keyed by locale.
	Embedded map[LocaleCode][]byte
	// BundledFS and BundledPattern locate bundled files, e.g. "locales/%s.json".
	BundledFS      fs.FS
	BundledPattern string
	// RemoteBaseURL and RemotePattern locate remote files, e.g. "/locales/%s.json".
	RemoteBaseURL string
	RemotePattern string
	FetchTimeout  time.Duration
	Policy        BootstrapPolicy
	MissPolicy    MissPolicy
}

// Chain returns the configured fallback chain for the active locale.
func (c LocalesConfig) Chain() FallbackChain {
	return NewFallbackChain(c.Active, c.Fallbacks...)
}

// Notification is emitted each time a locale reaches Loaded or Failed.
type Notification struct {
	Code   LocaleCode
	Status LoadStatus
	Err    error
}
