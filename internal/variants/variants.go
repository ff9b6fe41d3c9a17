// Package variants holds the named pricing variants the dashboard can render.
package variants

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"smarta-financials/internal/projection"
)

//go:embed variants.yaml
var defaultVariants []byte

var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrEmptyCatalog   = errors.New("no variants defined")
)

type file struct {
	Variants []projection.Params `yaml:"variants"`
}

// Catalog is an immutable, ordered set of variants.
type Catalog struct {
	order  []string
	byName map[string]projection.Params
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultVariants))
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variants file: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load parses and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read variants: %w", err)
	}

	var f file
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parse variants: %w", err)
	}
	if len(f.Variants) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{byName: make(map[string]projection.Params, len(f.Variants))}
	for _, v := range f.Variants {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[v.Name]; dup {
			return nil, fmt.Errorf("duplicate variant %q", v.Name)
		}
		c.byName[v.Name] = v
		c.order = append(c.order, v.Name)
	}
	return c, nil
}

func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// All returns the variants in catalog order.
func (c *Catalog) All() []projection.Params {
	out := make([]projection.Params, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

func (c *Catalog) Get(name string) (projection.Params, error) {
	p, ok := c.byName[name]
	if !ok {
		return projection.Params{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return p, nil
}
