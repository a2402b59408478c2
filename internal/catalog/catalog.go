// Package catalog holds the ordered, read-only list of tradable pair symbols.
package catalog

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"slices"
	"strings"

	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/storage/blob"
)

//go:embed pairs.txt
var embeddedPairs []byte

// Catalog is an ordered list of unique pair symbols. It is never mutated
// after construction and is safe for concurrent use.
type Catalog struct {
	pairs []string
	index map[string]struct{}
}

// New builds a catalog from pairs. Symbols are trimmed; empty symbols,
// duplicates and an empty list are rejected.
func New(pairs []string) (*Catalog, error) {
	if len(pairs) == 0 {
		return nil, core.WrapError(core.ErrCatalogInvalid, fmt.Errorf("no pairs"))
	}

	c := &Catalog{
		pairs: make([]string, 0, len(pairs)),
		index: make(map[string]struct{}, len(pairs)),
	}
	for i, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, core.WrapError(core.ErrCatalogInvalid, fmt.Errorf("empty pair at position %d", i))
		}
		if _, dup := c.index[p]; dup {
			return nil, core.WrapError(core.ErrCatalogInvalid, fmt.Errorf("duplicate pair %q", p))
		}
		c.index[p] = struct{}{}
		c.pairs = append(c.pairs, p)
	}
	return c, nil
}

// Parse reads one symbol per line. Blank lines and lines starting with '#'
// are skipped.
func Parse(data []byte) (*Catalog, error) {
	var pairs []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pairs = append(pairs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, core.WrapError(core.ErrCatalogInvalid, err)
	}
	return New(pairs)
}

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(embeddedPairs)
	if err != nil {
		panic(fmt.Sprintf("embedded pair catalog: %v", err))
	}
	return c
}

// Load reads a catalog file from r.
func Load(ctx context.Context, r blob.Reader, path string) (*Catalog, error) {
	data, err := r.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Pairs returns a copy of the symbols in catalog order.
func (c *Catalog) Pairs() []string {
	return slices.Clone(c.pairs)
}

// Len returns the number of symbols.
func (c *Catalog) Len() int {
	return len(c.pairs)
}

// First returns the first symbol, the default selection in pair pickers.
func (c *Catalog) First() string {
	return c.pairs[0]
}

// Contains reports whether pair is in the catalog. Matching is exact.
func (c *Catalog) Contains(pair string) bool {
	_, ok := c.index[pair]
	return ok
}

// Search returns the symbols containing term, case-insensitively, in catalog
// order. An empty term returns every symbol.
func (c *Catalog) Search(term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.Pairs()
	}
	var out []string
	for _, p := range c.pairs {
		if strings.Contains(strings.ToLower(p), term) {
			out = append(out, p)
		}
	}
	return out
}
