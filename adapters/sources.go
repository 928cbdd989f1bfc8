package adapters

import (
	"fmt"
	"strings"

	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/errors"
	"github.com/soffa-projects/tutor-shell/h"
	"github.com/thoas/go-funk"
	"golang.org/x/text/language"
)

const (
	DefaultBundledPattern = "locales/%s.json"
	DefaultRemotePattern  = "/locales/%s.json"
)

// ResolveSources enumerates the locale sources to load. It performs no I/O;
// every error it returns is a configuration error.
func ResolveSources(cfg f.LocalesConfig) ([]f.LocaleSource, error) {
	codes := make([]string, 0, len(cfg.Supported))
	for _, code := range cfg.Supported {
		codes = append(codes, strings.TrimSpace(string(code)))
	}
	codes = funk.UniqString(codes)
	if len(codes) == 0 {
		return nil, errors.Config("no supported locale configured")
	}
	for _, code := range codes {
		if code == "" {
			return nil, errors.Config("empty locale code in supported locales")
		}
		if _, err := language.Parse(code); err != nil {
			return nil, errors.WrapConfig(err, "invalid locale code %q", code)
		}
	}
	if cfg.Active == "" {
		return nil, errors.Config("no active locale configured")
	}
	for _, code := range cfg.Chain() {
		if !funk.ContainsString(codes, string(code)) {
			return nil, errors.Config("locale %s is part of the fallback chain but not supported", code)
		}
	}

	bundledPattern := funk.ShortIf(cfg.BundledPattern == "", DefaultBundledPattern, cfg.BundledPattern).(string)
	remotePattern := funk.ShortIf(cfg.RemotePattern == "", DefaultRemotePattern, cfg.RemotePattern).(string)
	for _, pattern := range []string{bundledPattern, remotePattern} {
		if !strings.Contains(pattern, "%s") {
			return nil, errors.Config("locale path pattern %q has no %%s placeholder", pattern)
		}
	}

	sources := make([]f.LocaleSource, 0, len(codes))
	for _, value := range codes {
		code := f.LocaleCode(value)
		kind, err := sourceKindOf(cfg, code)
		if err != nil {
			return nil, err
		}
		source := f.LocaleSource{Code: code, Kind: kind}
		switch kind {
		case f.SourceEmbedded:
			data, ok := cfg.Embedded[code]
			if !ok {
				return nil, errors.Config("locale %s is embedded but has no literal data", code)
			}
			source.Data = data
			source.Format = "json"
		case f.SourceBundled:
			if cfg.BundledFS == nil {
				return nil, errors.Config("locale %s is bundled but no bundle filesystem is configured", code)
			}
			source.FS = cfg.BundledFS
			source.Path = fmt.Sprintf(bundledPattern, code)
			source.Format = f.FormatOf(source.Path)
		case f.SourceRemote:
			source.URL = h.JoinUrl(cfg.RemoteBaseURL, fmt.Sprintf(remotePattern, code))
			source.Format = f.FormatOf(source.URL)
		}
		sources = append(sources, source)
	}
	return sources, nil
}

func sourceKindOf(cfg f.LocalesConfig, code f.LocaleCode) (f.SourceKind, error) {
	name, ok := cfg.Sources[code]
	if !ok {
		switch {
		case cfg.Embedded[code] != nil:
			return f.SourceEmbedded, nil
		case cfg.BundledFS != nil:
			return f.SourceBundled, nil
		default:
			return f.SourceRemote, nil
		}
	}
	kind, ok := f.ParseSourceKind(name)
	if !ok {
		return 0, errors.Config("unknown source kind %q for locale %s", name, code)
	}
	return kind, nil
}
