package f

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var pluralForms = map[string]struct{}{
	"zero": {}, "one": {}, "two": {}, "few": {}, "many": {}, "other": {},
}

// Catalog is the immutable, flattened set of messages of one locale.
type Catalog struct {
	locale    LocaleCode
	messages  map[MessageKey]*i18n.Message
	plurals   map[MessageKey]struct{}
	localizer *i18n.Localizer
}

// NewCatalog flattens a decoded document (nested maps allowed) into a catalog.
// A nested map made only of plural forms and holding "other" is also one plural
// message under its own key, next to its dotted leaves.
func NewCatalog(locale LocaleCode, tree map[string]any) (*Catalog, error) {
	c := &Catalog{
		locale:   locale,
		messages: make(map[MessageKey]*i18n.Message),
		plurals:  make(map[MessageKey]struct{}),
	}
	if err := c.flatten("", tree); err != nil {
		return nil, err
	}
	messages := c.messages

	tag := language.Make(string(locale))
	bundle := i18n.NewBundle(tag)
	list := make([]*i18n.Message, 0, len(messages))
	for _, m := range messages {
		list = append(list, m)
	}
	// Locales without plural rules still resolve, they are only not templated.
	if err := bundle.AddMessages(tag, list...); err == nil {
		c.localizer = i18n.NewLocalizer(bundle, tag.String())
	}
	return c, nil
}

func (c *Catalog) flatten(prefix string, node map[string]any) error {
	out := c.messages
	for key, value := range node {
		if key == "" {
			return fmt.Errorf("empty key under %q", prefix)
		}
		id := key
		if prefix != "" {
			id = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			if err := put(out, &i18n.Message{ID: id, Other: v}); err != nil {
				return err
			}
		case bool, int, int64, float64, uint64:
			if err := put(out, &i18n.Message{ID: id, Other: fmt.Sprint(v)}); err != nil {
				return err
			}
		case map[string]any:
			if m, ok := pluralMessage(id, v); ok {
				if err := put(out, m); err != nil {
					return err
				}
				c.plurals[id] = struct{}{}
			}
			if err := c.flatten(id, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported value for %q: %T", id, value)
		}
	}
	return nil
}

func put(out map[MessageKey]*i18n.Message, m *i18n.Message) error {
	if _, exists := out[m.ID]; exists {
		return fmt.Errorf("duplicate key %q", m.ID)
	}
	out[m.ID] = m
	return nil
}

func pluralMessage(id string, node map[string]any) (*i18n.Message, bool) {
	if _, ok := node["other"]; !ok {
		return nil, false
	}
	forms := make(map[string]string, len(node))
	for key, value := range node {
		if _, ok := pluralForms[key]; !ok {
			return nil, false
		}
		s, ok := value.(string)
		if !ok {
			return nil, false
		}
		forms[key] = s
	}
	return &i18n.Message{
		ID:    id,
		Zero:  forms["zero"],
		One:   forms["one"],
		Two:   forms["two"],
		Few:   forms["few"],
		Many:  forms["many"],
		Other: forms["other"],
	}, true
}

func (c *Catalog) Locale() LocaleCode {
	return c.locale
}

// Lookup returns the raw (untemplated) value of key.
func (c *Catalog) Lookup(key MessageKey) (string, bool) {
	if c == nil {
		return "", false
	}
	m, ok := c.messages[key]
	if !ok {
		return "", false
	}
	return m.Other, true
}

func (c *Catalog) Has(key MessageKey) bool {
	_, ok := c.Lookup(key)
	return ok
}

// Plural reports whether key holds plural forms.
func (c *Catalog) Plural(key MessageKey) bool {
	if c == nil {
		return false
	}
	_, ok := c.plurals[key]
	return ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.messages)
}

func (c *Catalog) Keys() []MessageKey {
	if c == nil {
		return nil
	}
	keys := make([]MessageKey, 0, len(c.messages))
	for key := range c.messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Format renders key with template data and an optional plural count.
// The raw value is returned when the message cannot be templated.
func (c *Catalog) Format(key MessageKey, data map[string]any, count any) (string, bool) {
	raw, ok := c.Lookup(key)
	if !ok {
		return "", false
	}
	if c.localizer == nil || (data == nil && count == nil && !strings.Contains(raw, "{{")) {
		return raw, true
	}
	out, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  count,
	})
	if err != nil {
		return raw, true
	}
	return out, true
}
