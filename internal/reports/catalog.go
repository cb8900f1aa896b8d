package reports

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v2"

	"chunkdash/pkg/contracts"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Version string       `yaml:"version"`
	Reports []Definition `yaml:"reports"`
}

// Catalog holds report definitions in registration order
type Catalog struct {
	mu      sync.RWMutex
	reports map[string]*Definition
	aliases map[string]string
	order   []string
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		reports: make(map[string]*Definition),
		aliases: make(map[string]string),
	}
}

// Register validates and adds a definition
func (c *Catalog) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	names := append([]string{def.Name}, def.Aliases...)
	for _, n := range names {
		if c.lookup(n) != nil {
			return fmt.Errorf("report %s already registered", n)
		}
	}

	d := def
	c.reports[d.Name] = &d
	for _, a := range d.Aliases {
		c.aliases[a] = d.Name
	}
	c.order = append(c.order, d.Name)
	return nil
}

// Get returns the definition registered under name or one of its aliases
func (c *Catalog) Get(name string) (*Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if d := c.lookup(name); d != nil {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownReport, name)
}

// Has reports whether name resolves to a definition
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookup(name) != nil
}

// List returns all definitions in registration order
func (c *Catalog) List() []*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Definition, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.reports[name])
	}
	return out
}

// Names returns the canonical report names in registration order
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Len returns the number of reports
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func (c *Catalog) lookup(name string) *Definition {
	if d, ok := c.reports[name]; ok {
		return d
	}
	if canonical, ok := c.aliases[name]; ok {
		return c.reports[canonical]
	}
	return nil
}

// ParseCatalog builds a catalog from YAML. Unknown keys are rejected.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if f.Version != contracts.CatalogFormatVersion {
		return nil, fmt.Errorf("unsupported catalog version %q, want %q", f.Version, contracts.CatalogFormatVersion)
	}
	if len(f.Reports) == 0 {
		return nil, fmt.Errorf("catalog has no reports")
	}

	c := NewCatalog()
	for _, def := range f.Reports {
		if err := c.Register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads the catalog file at path, or the built-in catalog when path
// is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}
