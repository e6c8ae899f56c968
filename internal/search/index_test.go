package search

import (
	"context"
	"testing"

	"mediavault/internal/catalog"
)

func strPtr(s string) *string { return &s }

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	items := []*catalog.Item{
		{ID: 1, Name: "Star.Wars.1977.mkv", Kind: catalog.KindVideo},
		{ID: 2, Name: "track01.mp3", Kind: catalog.KindAudio, Title: strPtr("Yellow Submarine"), Album: strPtr("Revolver"), Artists: []string{"The Beatles"}},
		{ID: 3, Name: "Holiday_Photos", Kind: catalog.KindDirectory},
	}
	for _, item := range items {
		if err := idx.Index(context.Background(), item); err != nil {
			t.Fatalf("Index(%d) error = %v", item.ID, err)
		}
	}
	return idx
}

func TestIndex_Search(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	tests := []struct {
		query string
		want  int64
	}{
		{"star wars", 1},
		{"submarine", 2},
		{"beatles", 2},
		{"revolver", 2},
		{"holiday", 3},
		{"subm", 2},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			ids, err := idx.Search(ctx, tt.query, 10, 0)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(ids) == 0 || ids[0] != tt.want {
				t.Errorf("Search(%q) = %v, want %d first", tt.query, ids, tt.want)
			}
		})
	}

	t.Run("empty query", func(t *testing.T) {
		ids, err := idx.Search(ctx, "   ", 10, 0)
		if err != nil || len(ids) != 0 {
			t.Errorf("Search(blank) = %v, %v, want nothing", ids, err)
		}
	})
}

func TestIndex_Delete(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	if err := idx.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	ids, err := idx.Search(ctx, "star wars", 10, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, id := range ids {
		if id == 1 {
			t.Error("deleted item still returned")
		}
	}

	n, err := idx.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"Star.Wars_1977.mkv": "Star Wars 1977",
		"Holiday Photos":     "Holiday Photos",
		".hidden":            "hidden",
		"a-b-c.tar":          "a b c",
	}
	for in, want := range tests {
		if got := displayName(in); got != want {
			t.Errorf("displayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIndex_SearchPaging(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	for id := int64(10); id < 15; id++ {
		item := &catalog.Item{ID: id, Name: "runner.mp4", Kind: catalog.KindVideo}
		if err := idx.Index(ctx, item); err != nil {
			t.Fatalf("Index(%d) error = %v", id, err)
		}
	}

	all, err := idx.Search(ctx, "runner", 10, 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Search() = %v, want 5 hits", all)
	}

	var paged []int64
	for offset := 0; offset < 6; offset += 2 {
		ids, err := idx.Search(ctx, "runner", 2, offset)
		if err != nil {
			t.Fatalf("Search(offset=%d) error = %v", offset, err)
		}
		paged = append(paged, ids...)
	}
	if len(paged) != len(all) {
		t.Fatalf("paged = %v, want %v", paged, all)
	}
	for i := range all {
		if paged[i] != all[i] {
			t.Errorf("paged[%d] = %d, want %d", i, paged[i], all[i])
		}
	}
}
