package catalog_test

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"visit_polzela/internal/catalog"
)

func TestResolveTitle(t *testing.T) {
	c := catalog.NewTitleCache(testFS())
	tests := []struct {
		id, lang, want string
		ok             bool
	}{
		{"castle", "de", "Schloss", true},
		{"castle", "fr", "Castle", true},
		{"castle", "", "Castle", true},
		{"church", "NL", "Church", true},
		{"pond", "EN", "", false},
	}
	for _, tt := range tests {
		got, ok := c.ResolveTitle(tt.id, tt.lang)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s/%s: got %q,%v want %q,%v", tt.id, tt.lang, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLabel(t *testing.T) {
	c := catalog.NewTitleCache(testFS())
	if got := c.Label(catalog.TakeMeKey, "SL"); got != "Pelji me tja!" {
		t.Fatalf("SL: %q", got)
	}
	if got := c.Label(catalog.TakeMeKey, "NL"); got != "Take me there!" {
		t.Fatalf("NL falls back to EN: %q", got)
	}
	if got := c.Label("unknown", "DE"); got != "unknown" {
		t.Fatalf("unknown key: %q", got)
	}

	empty := catalog.NewTitleCache(fstest.MapFS{})
	if got := empty.Label(catalog.TakeMeKey, "DE"); got != "Take me there!" {
		t.Fatalf("built-in default: %q", got)
	}
}

func TestTitleCache_InvalidateAndClear(t *testing.T) {
	fsys := testFS()
	c := catalog.NewTitleCache(fsys)

	if got, _ := c.ResolveTitle("castle", "DE"); got != "Schloss" {
		t.Fatalf("got %q", got)
	}
	c.ResolveTitle("castle", "SL")

	fsys["poititles.txt"] = &fstest.MapFile{Data: []byte("castle;EN:Castle;DE:Burg;SL:Grajski\n")}

	// still served from memory
	if got, _ := c.ResolveTitle("castle", "DE"); got != "Schloss" {
		t.Fatalf("expected cached title, got %q", got)
	}

	c.Invalidate("de")
	if got, _ := c.ResolveTitle("castle", "DE"); got != "Burg" {
		t.Fatalf("expected reparsed title, got %q", got)
	}
	if got, _ := c.ResolveTitle("castle", "SL"); got != "Grad" {
		t.Fatalf("other languages must stay cached, got %q", got)
	}

	c.Clear()
	if n := len(c.Cached()); n != 0 {
		t.Fatalf("expected empty cache, got %d", n)
	}
	if got, _ := c.ResolveTitle("castle", "SL"); got != "Grajski" {
		t.Fatalf("expected reparsed title after clear, got %q", got)
	}
}

func TestTitleCache_MissingFileNotCached(t *testing.T) {
	fsys := fstest.MapFS{}
	c := catalog.NewTitleCache(fsys)

	if _, ok := c.ResolveTitle("castle", "EN"); ok {
		t.Fatal("expected miss")
	}
	fsys["poititles.txt"] = &fstest.MapFile{Data: []byte("castle;EN:Castle\n")}
	if got, ok := c.ResolveTitle("castle", "EN"); !ok || got != "Castle" {
		t.Fatalf("file should be read once it appears, got %q", got)
	}
}

func TestTitleCache_LastRowWins(t *testing.T) {
	c := catalog.NewTitleCache(fstest.MapFS{
		"poititles.txt": {Data: []byte("castle;EN:First\ncastle;EN:Second\nbad\n;EN:orphan\n")},
	})
	if got, _ := c.ResolveTitle("castle", "EN"); got != "Second" {
		t.Fatalf("got %q", got)
	}
}

func TestTitleCache_OverlongRowSkipped(t *testing.T) {
	data := "castle;EN:Castle\n" +
		"church;EN:" + strings.Repeat("x", 2<<20) + "\n" +
		"pond;EN:Pond;DE:Teich\n"
	c := catalog.NewTitleCache(fstest.MapFS{"poititles.txt": {Data: []byte(data)}})

	if got, ok := c.ResolveTitle("pond", "DE"); !ok || got != "Teich" {
		t.Fatalf("row after the long one: %q,%v", got, ok)
	}
	if _, ok := c.ResolveTitle("church", "EN"); ok {
		t.Fatalf("overlong row must not resolve")
	}
}

func TestTitleCache_Concurrent(t *testing.T) {
	c := catalog.NewTitleCache(testFS())
	var wg sync.WaitGroup
	got := make([]string, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lang := []string{"EN", "SL", "DE", "NL"}[i%4]
			got[i], _ = c.ResolveTitle("castle", lang)
		}(i)
	}
	wg.Wait()

	want := map[string]string{"EN": "Castle", "SL": "Grad", "DE": "Schloss", "NL": "Kasteel"}
	for i, g := range got {
		if lang := []string{"EN", "SL", "DE", "NL"}[i%4]; g != want[lang] {
			t.Fatalf("%s: got %q", lang, g)
		}
	}
	cached := c.Cached()
	sort.Strings(cached)
	if len(cached) != 4 {
		t.Fatalf("cached: %v", cached)
	}
}
