// Package catalog holds the static idiom content shipped with the service.
package catalog

import (
	_ "embed"
	"fmt"
	"math/rand"
	"strings"

	"idioviet/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed idioms.yaml
var idiomsYAML []byte

// Catalog is an immutable, ordered list of idioms
type Catalog struct {
	idioms []domain.Idiom
	byID   map[int]int
}

// Load parses the embedded catalog
func Load() (*Catalog, error) {
	return Parse(idiomsYAML)
}

// Parse builds a catalog from YAML and validates every entry
func Parse(data []byte) (*Catalog, error) {
	var idioms []domain.Idiom
	if err := yaml.Unmarshal(data, &idioms); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(idioms)
}

// New builds a catalog from already decoded idioms
func New(idioms []domain.Idiom) (*Catalog, error) {
	if len(idioms) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	c := &Catalog{
		idioms: make([]domain.Idiom, len(idioms)),
		byID:   make(map[int]int, len(idioms)),
	}
	copy(c.idioms, idioms)

	for i, idiom := range c.idioms {
		if err := validate(idiom); err != nil {
			return nil, err
		}
		if _, dup := c.byID[idiom.ID]; dup {
			return nil, fmt.Errorf("idiom %d: duplicate id", idiom.ID)
		}
		c.byID[idiom.ID] = i
	}

	return c, nil
}

func validate(idiom domain.Idiom) error {
	if idiom.ID <= 0 {
		return fmt.Errorf("idiom %q: id must be positive, got %d", idiom.Phrase, idiom.ID)
	}
	if strings.TrimSpace(idiom.Phrase) == "" {
		return fmt.Errorf("idiom %d: phrase is empty", idiom.ID)
	}
	if len(idiom.Chunks) == 0 {
		return fmt.Errorf("idiom %d: at least one chunk is required", idiom.ID)
	}
	if !idiom.ChunksMatchPhrase() {
		return fmt.Errorf("idiom %d: chunks %q do not spell phrase %q",
			idiom.ID, idiom.JoinedChunks(), idiom.Phrase)
	}
	return nil
}

// All returns every idiom in catalog order
func (c *Catalog) All() []domain.Idiom {
	out := make([]domain.Idiom, len(c.idioms))
	copy(out, c.idioms)
	return out
}

// Len returns the number of idioms
func (c *Catalog) Len() int {
	return len(c.idioms)
}

// Get returns the idiom with the given id
func (c *Catalog) Get(id int) (domain.Idiom, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Idiom{}, false
	}
	return c.idioms[i], true
}

// Has reports whether id belongs to the catalog
func (c *Catalog) Has(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// Filter returns idioms whose ids are in the set, in catalog order.
// Unknown ids are skipped.
func (c *Catalog) Filter(set domain.SavedSet) []domain.Idiom {
	out := make([]domain.Idiom, 0, len(set))
	for _, idiom := range c.idioms {
		if set.Has(idiom.ID) {
			out = append(out, idiom)
		}
	}
	return out
}

// First returns the first idiom of the carousel
func (c *Catalog) First() domain.Idiom {
	return c.idioms[0]
}

// Neighbour returns the idiom step positions away from id, wrapping around
// both ends like a looping carousel. Unknown ids start from the first idiom.
func (c *Catalog) Neighbour(id, step int) domain.Idiom {
	i, ok := c.byID[id]
	if !ok {
		return c.idioms[0]
	}
	n := len(c.idioms)
	return c.idioms[((i+step)%n+n)%n]
}

// Random returns a random idiom
func (c *Catalog) Random() domain.Idiom {
	return c.idioms[rand.Intn(len(c.idioms))]
}

// Texts returns every phrase and chunk text once, in catalog order
func (c *Catalog) Texts() []string {
	seen := make(map[string]struct{})
	var texts []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		texts = append(texts, s)
	}

	for _, idiom := range c.idioms {
		add(idiom.Phrase)
		for _, chunk := range idiom.Chunks {
			add(chunk.Text)
		}
	}
	return texts
}
