package application

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed catalog.json
var defaultCatalogJSON []byte

// Catalog is the fixed, read-only resource list supplied at startup.
type Catalog struct {
	resources []Resource
	byID      map[string]int
}

// NewCatalog validates ids and types and freezes the list.
func NewCatalog(resources []Resource) (*Catalog, error) {
	c := &Catalog{
		resources: make([]Resource, 0, len(resources)),
		byID:      make(map[string]int, len(resources)),
	}
	for i, r := range resources {
		id := strings.TrimSpace(r.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog entry %d: id is required", i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, id)
		}
		switch r.Type {
		case ResourceArticle, ResourceVideo, ResourceMovie, ResourceSong:
		default:
			return nil, fmt.Errorf("catalog entry %q: unknown type %q", id, r.Type)
		}
		r.ID = id
		c.byID[id] = len(c.resources)
		c.resources = append(c.resources, cloneResource(r))
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(bytes.NewReader(defaultCatalogJSON))
	if err != nil {
		panic(fmt.Sprintf("application: embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads a JSON catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

type catalogEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Thumbnail   string   `json:"thumbnail"`
	Tags        []string `json:"tags"`
	MoodTags    []string `json:"mood_tags"`
	URL         string   `json:"url,omitempty"`
	Language    string   `json:"language,omitempty"`
}

// ParseCatalog decodes a JSON array of catalog entries.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var entries []catalogEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	resources := make([]Resource, 0, len(entries))
	for _, e := range entries {
		moods := make([]Mood, 0, len(e.MoodTags))
		for _, tag := range e.MoodTags {
			mood, ok := ParseMood(tag)
			if !ok {
				return nil, fmt.Errorf("catalog entry %q: unknown mood tag %q", e.ID, tag)
			}
			moods = append(moods, mood)
		}
		resources = append(resources, Resource{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Type:        ResourceType(strings.ToLower(strings.TrimSpace(e.Type))),
			Category:    e.Category,
			Thumbnail:   e.Thumbnail,
			Tags:        e.Tags,
			MoodTags:    moods,
			URL:         e.URL,
			Language:    e.Language,
		})
	}
	return NewCatalog(resources)
}

// All returns a copy of the catalog in its original order.
func (c *Catalog) All() []Resource {
	if c == nil {
		return nil
	}
	out := make([]Resource, len(c.resources))
	for i, r := range c.resources {
		out[i] = cloneResource(r)
	}
	return out
}

// Get looks a resource up by id.
func (c *Catalog) Get(id string) (Resource, bool) {
	if c == nil {
		return Resource{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return Resource{}, false
	}
	return cloneResource(c.resources[idx]), true
}

// Len reports the number of catalog entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.resources)
}

func cloneResource(r Resource) Resource {
	r.Tags = append([]string(nil), r.Tags...)
	r.MoodTags = append([]Mood(nil), r.MoodTags...)
	return r
}
