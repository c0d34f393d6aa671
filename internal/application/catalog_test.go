package application

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	catalog := DefaultCatalog()
	if catalog.Len() != 5 {
		t.Fatalf("expected 5 built-in resources, got %d", catalog.Len())
	}
	song, ok := catalog.Get("4")
	if !ok || song.Type != ResourceSong || song.Language != "English" {
		t.Fatalf("unexpected song entry %#v", song)
	}

	all := catalog.All()
	all[0].Tags[0] = "mutated"
	if again, _ := catalog.Get(all[0].ID); again.Tags[0] == "mutated" {
		t.Fatalf("expected All to return copies")
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"malformed":    `{"id":`,
		"missing id":   `[{"id":"","type":"song"}]`,
		"duplicate id": `[{"id":"a","type":"song"},{"id":"a","type":"video"}]`,
		"unknown type": `[{"id":"a","type":"podcast"}]`,
		"unknown mood": `[{"id":"a","type":"song","mood_tags":["Ecstatic"]}]`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCatalog(strings.NewReader(body)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `[{"id":"x","title":"Breathing","type":"Article","mood_tags":["anxious"]}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	r, ok := catalog.Get("x")
	if !ok || r.Type != ResourceArticle || len(r.MoodTags) != 1 || r.MoodTags[0] != MoodAnxious {
		t.Fatalf("unexpected resource %#v", r)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected missing file to fail")
	}
}
