package adapters

import (
	"fmt"
	"mime"
	"strings"

	"github.com/BurntSushi/toml"
	f "github.com/soffa-projects/tutor-shell/core"
	"github.com/soffa-projects/tutor-shell/h"
	"gopkg.in/yaml.v3"
)

// ParseCatalog decodes a catalog document in the given format (json, toml or yaml).
func ParseCatalog(code f.LocaleCode, format string, body []byte) (*f.Catalog, error) {
	var tree map[string]any
	switch format {
	case "toml":
		if err := toml.Unmarshal(body, &tree); err != nil {
			return nil, err
		}
	case "yaml":
		if err := yaml.Unmarshal(body, &tree); err != nil {
			return nil, err
		}
	case "json", "":
		values, err := h.DecodeJsonObject(body)
		if err != nil {
			return nil, err
		}
		tree = values
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	return f.NewCatalog(code, tree)
}

// formatFromContentType only overrides the source format for explicit toml/yaml responses.
func formatFromContentType(contentType string, fallback string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fallback
	}
	switch {
	case strings.HasSuffix(mediaType, "toml"):
		return "toml"
	case strings.HasSuffix(mediaType, "yaml"), strings.HasSuffix(mediaType, "yml"):
		return "yaml"
	default:
		return fallback
	}
}
