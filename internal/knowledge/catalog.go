package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry maps one vector-index id to a document title and the external
// source it was ingested from.
type Entry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SourceRef string `json:"source_ref"`
}

// Catalog is the immutable match-id lookup table, loaded once at startup
// and injected wherever it is needed.
type Catalog struct {
	entries map[string]Entry
}

func NewCatalog(entries []Entry) *Catalog {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	return &Catalog{entries: m}
}

// LoadCatalog reads the catalog from a JSON file holding a list of entries.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	for _, e := range entries {
		if e.ID == "" || e.Title == "" {
			return nil, fmt.Errorf("catalog entry must have id and title: %+v", e)
		}
	}

	return NewCatalog(entries), nil
}

func (c *Catalog) Resolve(id string) (Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

func (c *Catalog) Contains(id string) bool {
	_, ok := c.entries[id]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.entries)
}
