package catalog_test

import (
	"context"
	"testing"

	"mediavault/internal/catalog"
	"mediavault/internal/search"
)

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.user(t, "alice", false)

	e.fsmgr.AddFile("/media/Blade Runner.mkv", 1)
	e.fsmgr.AddFile("/media/Runner Runner.mp4", 1)
	e.fsmgr.AddFile("/media/Other.mp4", 1)
	e.ingest(t, "/media", nil, catalog.PolicyAll)

	t.Run("without index returns nothing", func(t *testing.T) {
		got, err := e.svc.SearchItems(ctx, alice, "runner", 10)
		if err != nil {
			t.Fatalf("SearchItems() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("SearchItems() = %v, want empty", paths(got))
		}
	})

	idx, err := search.New()
	if err != nil {
		t.Fatalf("search.New() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	e.svc.SetSearchIndex(idx)

	n, err := e.svc.ReindexAll(ctx)
	if err != nil {
		t.Fatalf("ReindexAll() error = %v", err)
	}
	if n != 4 {
		t.Errorf("ReindexAll() = %d, want 4", n)
	}

	t.Run("finds accessible matches", func(t *testing.T) {
		got, err := e.svc.SearchItems(ctx, alice, "runner", 10)
		if err != nil {
			t.Fatalf("SearchItems() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("SearchItems() = %v, want the two runner files", paths(got))
		}
	})

	t.Run("filters by accessibility", func(t *testing.T) {
		if err := e.svc.RevokePermission(ctx, e.item(t, "/media/Blade Runner.mkv"), alice); err != nil {
			t.Fatal(err)
		}
		got, _ := e.svc.SearchItems(ctx, alice, "blade", 10)
		if len(got) != 0 {
			t.Errorf("SearchItems() = %v, want nothing", paths(got))
		}
	})

	t.Run("new and removed items follow the catalog", func(t *testing.T) {
		e.fsmgr.AddFile("/media/Zebra.mp4", 1)
		e.ingest(t, "/media", nil, catalog.PolicyAll)

		got, _ := e.svc.SearchItems(ctx, alice, "zebra", 10)
		if len(got) != 1 {
			t.Fatalf("after ingest SearchItems() = %v", paths(got))
		}

		if _, err := e.svc.RemoveItemRecursive(ctx, got[0]); err != nil {
			t.Fatal(err)
		}
		got, _ = e.svc.SearchItems(ctx, alice, "zebra", 10)
		if len(got) != 0 {
			t.Errorf("after remove SearchItems() = %v", paths(got))
		}
	})
}

func TestService_SearchSkipsInaccessibleHits(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.user(t, "alice", false)

	idx, err := search.New()
	if err != nil {
		t.Fatalf("search.New() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	e.svc.SetSearchIndex(idx)

	// Exact name matches rank above the accessible partial match.
	for _, dir := range []string{"a", "b", "c", "d", "e"} {
		e.fsmgr.AddFile("/private/"+dir+"/runner.mp4", 1)
	}
	e.ingest(t, "/private", nil, catalog.PolicyNone)
	e.fsmgr.AddFile("/shared/runners club.mp4", 1)
	e.ingest(t, "/shared", nil, catalog.PolicyAll)

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"small limit", 3, []string{"/shared/runners club.mp4"}},
		{"limit of one", 1, []string{"/shared/runners club.mp4"}},
		{"no limit", 0, []string{"/shared/runners club.mp4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.svc.SearchItems(ctx, alice, "runner", tt.limit)
			if err != nil {
				t.Fatalf("SearchItems() error = %v", err)
			}
			if !equalStrings(paths(got), tt.want) {
				t.Errorf("SearchItems() = %v, want %v", paths(got), tt.want)
			}
		})
	}

	t.Run("limit caps accessible hits", func(t *testing.T) {
		if err := e.svc.GrantPermissionRecursive(ctx, e.item(t, "/private"), alice, false); err != nil {
			t.Fatal(err)
		}
		got, err := e.svc.SearchItems(ctx, alice, "runner", 2)
		if err != nil {
			t.Fatalf("SearchItems() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("SearchItems() = %v, want 2 items", paths(got))
		}
	})
}
