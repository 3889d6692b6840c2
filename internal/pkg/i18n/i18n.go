package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"family-connections/internal/domain"
)

const (
	DefaultLocale = "en"
	fileName      = "relationships.yaml"
)

type Translations map[string]string

// Catalog holds the translations of every locale found on disk. It is read-only
// after Load.
type Catalog struct {
	locales map[string]Translations
}

// Load reads <localePath>/<locale>/relationships.yaml for every locale
// directory. Nested YAML keys are flattened with dots.
func Load(localePath string) (*Catalog, error) {
	entries, err := os.ReadDir(localePath)
	if err != nil {
		return nil, err
	}

	c := &Catalog{locales: make(map[string]Translations)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := filepath.Join(localePath, locale, fileName)

		data, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		var doc map[string]interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
		}

		trans := make(Translations)
		flatten("", doc, trans)
		c.locales[locale] = trans
	}

	return c, nil
}

func flatten(prefix string, node map[string]interface{}, out Translations) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.locales))
	for l := range c.locales {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Lookup falls back to the default locale before giving up.
func (c *Catalog) Lookup(locale, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if trans, ok := c.locales[locale]; ok {
		if val, ok := trans[key]; ok {
			return val, true
		}
	}
	if locale != DefaultLocale {
		if trans, ok := c.locales[DefaultLocale]; ok {
			if val, ok := trans[key]; ok {
				return val, true
			}
		}
	}
	return "", false
}

func (c *Catalog) Translate(locale, key string) string {
	if val, ok := c.Lookup(locale, key); ok {
		return val
	}
	return key
}

// RelationshipTypes returns the registry entries with labels in the requested
// locale. Types without a translation keep the registry label.
func (c *Catalog) RelationshipTypes(locale string, registry *domain.Registry) []domain.RelationshipTypeConfig {
	configs := registry.Configs()
	for i := range configs {
		if label, ok := c.Lookup(locale, "relationship."+string(configs[i].Value)); ok {
			configs[i].Label = label
		}
	}
	return configs
}
