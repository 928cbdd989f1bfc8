package adapters

import (
	"context"
	"fmt"

	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/errors"
	"github.com/soffa-projects/tutor-shell/log"
)

// Resolver walks a fallback chain over already published catalogs. It never
// waits for a load: entries that are not Loaded contribute nothing.
type Resolver struct {
	registry f.Registry
}

func NewResolver(registry f.Registry) Resolver {
	return Resolver{registry: registry}
}

// Resolve returns the value of key from the first chain member that has it.
// The boolean is false on a miss.
func (r Resolver) Resolve(chain f.FallbackChain, key f.MessageKey) (string, bool) {
	_, value, ok := r.ResolveFrom(chain, key)
	return value, ok
}

// ResolveFrom is Resolve that also returns the catalog the value came from.
func (r Resolver) ResolveFrom(chain f.FallbackChain, key f.MessageKey) (*f.Catalog, string, bool) {
	for _, code := range chain {
		entry, ok := r.registry.Get(code)
		if !ok || entry.Status != f.Loaded {
			continue
		}
		if value, ok := entry.Catalog.Lookup(key); ok {
			return entry.Catalog, value, true
		}
	}
	return nil, "", false
}

type i18nImpl struct {
	resolver Resolver
	chain    f.FallbackChain
	miss     f.MissPolicy
}

func NewTranslator(registry f.Registry, chain f.FallbackChain, miss f.MissPolicy) f.I18n {
	return &i18nImpl{
		resolver: NewResolver(registry),
		chain:    chain,
		miss:     miss,
	}
}

func (i *i18nImpl) Locale() f.LocaleCode {
	return i.chain.Active()
}

// T translates messageId. args may hold a map[string]any of template data
// and an int plural count. A plural key given no count is formatted for 0.
func (i *i18nImpl) T(messageId string, args ...any) string {
	catalog, value, ok := i.resolver.ResolveFrom(i.chain, messageId)
	if !ok {
		if i.miss == f.MissAsEmpty {
			return ""
		}
		return messageId
	}
	data, count := templateArgs(args)
	if count == nil && catalog.Plural(messageId) {
		// plural keys without a count render their zero form
		data, count = templateArgs(append([]any{0}, args...))
	}
	if data == nil && count == nil {
		return value
	}
	out, _ := catalog.Format(messageId, data, count)
	return out
}

func templateArgs(args []any) (map[string]any, any) {
	var data map[string]any
	var count any
	for _, arg := range args {
		switch v := arg.(type) {
		case map[string]any:
			data = v
		case int, int64:
			count = v
		}
	}
	if count != nil {
		merged := map[string]any{"PluralCount": count}
		for k, v := range data {
			merged[k] = v
		}
		data = merged
	}
	return data, count
}

// ------------------------------------------------------------------------------------------------------------------
// LOCALE SERVICE
// ------------------------------------------------------------------------------------------------------------------

type localeServiceImpl struct {
	registry f.Registry
	loader   f.Loader
	config   f.LocalesConfig
}

func NewLocaleService(registry f.Registry, loader f.Loader, cfg f.LocalesConfig) f.LocaleService {
	return &localeServiceImpl{
		registry: registry,
		loader:   loader,
		config:   cfg,
	}
}

func (s *localeServiceImpl) Default() f.LocaleCode {
	return s.config.Active
}

// Translator builds the chain for a visitor: their locale first, then the
// configured chain.
func (s *localeServiceImpl) Translator(active f.LocaleCode) f.I18n {
	if active == "" {
		active = s.config.Active
	}
	chain := f.NewFallbackChain(active, s.config.Chain()...)
	return NewTranslator(s.registry, chain, s.config.MissPolicy)
}

// Activate starts loading code without waiting for it.
func (s *localeServiceImpl) Activate(ctx context.Context, code f.LocaleCode) error {
	if _, ok := s.registry.Get(code); !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownLocale, code)
	}
	go func() {
		if _, err := s.loader.Load(context.WithoutCancel(ctx), code); err != nil {
			log.WithLocale(string(code)).Warnf("activation load failed: %v", err)
		}
	}()
	return nil
}

func (s *localeServiceImpl) Entries() []f.RegistryEntry {
	codes := s.registry.Codes()
	entries := make([]f.RegistryEntry, 0, len(codes))
	for _, code := range codes {
		if entry, ok := s.registry.Get(code); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}
