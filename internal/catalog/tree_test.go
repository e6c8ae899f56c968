package catalog_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"mediavault/internal/catalog"
	"mediavault/internal/testutil"
)

func TestService_Tree(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	alice := e.user(t, "alice", false)
	e.fsmgr.AddFile("/media/show/ep1.mp4", 1)
	e.fsmgr.AddFile("/media/show/ep2.mp4", 1)
	e.fsmgr.AddFile("/media/film.mp4", 1)
	e.fsmgr.AddFile("/music/song.mp3", 1)
	e.ingest(t, "/media", nil, catalog.PolicyAll)
	e.ingest(t, "/music", nil, catalog.PolicyAll)
	if err := e.svc.RevokePermission(ctx, e.item(t, "/media/show/ep2.mp4"), alice); err != nil {
		t.Fatal(err)
	}
	if err := e.svc.RevokePermission(ctx, e.item(t, "/music"), alice); err != nil {
		t.Fatal(err)
	}

	t.Run("root items are filtered", func(t *testing.T) {
		roots, err := e.svc.GetRootItems(ctx, alice)
		if err != nil {
			t.Fatalf("GetRootItems() error = %v", err)
		}
		if got := paths(roots); !equalStrings(got, []string{"/media"}) {
			t.Errorf("GetRootItems() = %v", got)
		}
	})

	t.Run("children are returned in insertion order", func(t *testing.T) {
		media := e.item(t, "/media")
		children, err := e.svc.GetChildren(ctx, strconv.FormatInt(media.ID, 10), alice)
		if err != nil {
			t.Fatalf("GetChildren() error = %v", err)
		}
		if got := paths(children); !equalStrings(got, []string{"/media/film.mp4", "/media/show"}) {
			t.Errorf("GetChildren() = %v", got)
		}
	})

	t.Run("children are not filtered", func(t *testing.T) {
		show := e.item(t, "/media/show")
		children, _ := e.svc.GetChildren(ctx, strconv.FormatInt(show.ID, 10), alice)
		if len(children) != 2 {
			t.Errorf("GetChildren() returned %d items, want 2", len(children))
		}
	})

	t.Run("unresolved parent falls back to roots", func(t *testing.T) {
		for _, id := range []string{"", "abc", "99999"} {
			children, err := e.svc.GetChildren(ctx, id, alice)
			if err != nil {
				t.Fatalf("GetChildren(%q) error = %v", id, err)
			}
			if got := paths(children); !equalStrings(got, []string{"/media"}) {
				t.Errorf("GetChildren(%q) = %v, want roots", id, got)
			}
		}
	})

	t.Run("recursive tree matches filtered structure", func(t *testing.T) {
		forest, err := e.svc.GetRootItemsRecursive(ctx, alice)
		if err != nil {
			t.Fatalf("GetRootItemsRecursive() error = %v", err)
		}
		if len(forest) != 1 || forest[0].Path != "/media" {
			t.Fatalf("forest roots = %d, want /media only", len(forest))
		}
		media := forest[0]
		if len(media.Children) != 2 {
			t.Fatalf("/media children = %d, want 2", len(media.Children))
		}
		show := media.Children[1]
		if show.Path != "/media/show" {
			t.Fatalf("second child = %s, want /media/show", show.Path)
		}
		if len(show.Children) != 1 || show.Children[0].Path != "/media/show/ep1.mp4" {
			t.Errorf("/media/show children = %d, want ep1 only", len(show.Children))
		}
		if show.Children[0].Children == nil {
			t.Error("leaf Children should be an empty slice, not nil")
		}
	})

	t.Run("recursive subtree", func(t *testing.T) {
		show := e.item(t, "/media/show")
		nodes, err := e.svc.GetChildrenRecursive(ctx, strconv.FormatInt(show.ID, 10), alice)
		if err != nil {
			t.Fatalf("GetChildrenRecursive() error = %v", err)
		}
		if len(nodes) != 1 || nodes[0].ID != show.ID {
			t.Fatalf("GetChildrenRecursive() returned %d nodes", len(nodes))
		}
		if len(nodes[0].Children) != 1 {
			t.Errorf("subtree children = %d, want 1", len(nodes[0].Children))
		}
	})
}

func TestService_TreeCycle(t *testing.T) {
	ctx := context.Background()
	base := newTestEnv(t)
	alice := base.user(t, "alice", false)
	base.fsmgr.AddFile("/media/a/b/c.mp4", 1)
	base.ingest(t, "/media", nil, catalog.PolicyAll)

	media := base.item(t, "/media")
	b := base.item(t, "/media/a/b")
	db := &cyclicDatabase{Database: base.db, extra: map[int64][]*catalog.Item{b.ID: {media}}}
	svc := catalog.NewService(db, base.fsmgr, testutil.NewStubClassifier(), &testutil.RecordingLogger{}, testutil.FixedClock(), testutil.NewStubIDGenerator())

	t.Run("tree", func(t *testing.T) {
		_, err := svc.GetRootItemsRecursive(ctx, alice)
		if !errors.Is(err, catalog.ErrCycleDetected) {
			t.Errorf("GetRootItemsRecursive() error = %v, want ErrCycleDetected", err)
		}
	})

	t.Run("recursive grant", func(t *testing.T) {
		err := svc.GrantPermissionRecursive(ctx, media, alice, false)
		if !errors.Is(err, catalog.ErrCycleDetected) {
			t.Errorf("GrantPermissionRecursive() error = %v, want ErrCycleDetected", err)
		}
	})

	t.Run("recursive remove", func(t *testing.T) {
		_, err := svc.RemoveItemRecursive(ctx, media)
		if !errors.Is(err, catalog.ErrCycleDetected) {
			t.Errorf("RemoveItemRecursive() error = %v, want ErrCycleDetected", err)
		}
	})
}
