package payloads

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// MarkerSlot is the placeholder replaced by a marker when a template is rendered
const MarkerSlot = "{marker}"

//go:embed catalog.yaml
var defaultCatalogData []byte

// Template is a payload containing exactly one marker slot
type Template string

// Render substitutes the marker into the template slot
func (t Template) Render(marker Marker) string {
	return strings.Replace(string(t), MarkerSlot, string(marker), 1)
}

// Validate checks the template carries exactly one marker slot
func (t Template) Validate() error {
	count := strings.Count(string(t), MarkerSlot)
	if count != 1 {
		return fmt.Errorf("payload template %q must contain exactly one %s slot, found %d", string(t), MarkerSlot, count)
	}
	return nil
}

// Entry is a template together with the level it was registered under
type Entry struct {
	Level    RiskLevel `json:"level" yaml:"level"`
	Template Template  `json:"template" yaml:"template"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s", e.Level, e.Template)
}

func (e Entry) Pretty() string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(e.Level)), e.Template)
}

func (e Entry) TableHeaders() []string {
	return []string{"Level", "Template"}
}

func (e Entry) TableRow() []string {
	return []string{string(e.Level), string(e.Template)}
}

type catalogFile struct {
	Levels []struct {
		Name      string   `yaml:"name"`
		Templates []string `yaml:"templates"`
	} `yaml:"levels"`
}

// Catalog holds the payload templates per level in registration order. It is read-only once built.
type Catalog struct {
	templates map[RiskLevel][]Template
}

// ParseCatalog reads a catalog YAML document. Unknown level names are rejected.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing payload catalog: %w", err)
	}
	c := &Catalog{templates: make(map[RiskLevel][]Template)}
	for _, lvl := range file.Levels {
		level := RiskLevel(strings.ToLower(strings.TrimSpace(lvl.Name)))
		if !level.IsValid() {
			return nil, fmt.Errorf("unknown payload level %q in catalog", lvl.Name)
		}
		for _, raw := range lvl.Templates {
			tpl := Template(raw)
			if err := tpl.Validate(); err != nil {
				return nil, err
			}
			c.templates[level] = append(c.templates[level], tpl)
		}
	}
	return c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded catalog
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(defaultCatalogData)
		if err != nil {
			log.Panic().Err(err).Msg("Embedded payload catalog is invalid")
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// LoadCatalogFile returns a new catalog made of the built-in templates followed by the ones defined in path
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	extra, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	merged := DefaultCatalog().Merge(extra)
	log.Info().Str("file", path).Int("templates", extra.Len()).Msg("Loaded custom payload templates")
	return merged, nil
}

// Merge returns a new catalog with the templates of other appended after the ones of c
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := &Catalog{templates: make(map[RiskLevel][]Template)}
	for _, level := range AllLevels {
		merged.templates[level] = append(merged.templates[level], c.templates[level]...)
		if other != nil {
			merged.templates[level] = append(merged.templates[level], other.templates[level]...)
		}
	}
	return merged
}

// Len returns the total number of templates
func (c *Catalog) Len() int {
	total := 0
	for _, templates := range c.templates {
		total += len(templates)
	}
	return total
}

// ForLevels returns the templates of the requested levels, levels in the given order and templates in
// registration order. Levels the catalog does not know about are skipped.
func (c *Catalog) ForLevels(levels []RiskLevel) []Entry {
	var entries []Entry
	for _, level := range levels {
		templates, ok := c.templates[level]
		if !ok {
			continue
		}
		for _, tpl := range templates {
			entries = append(entries, Entry{Level: level, Template: tpl})
		}
	}
	return entries
}
