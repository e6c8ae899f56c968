package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// AddItemRecursive ingests location and, if it is a directory, everything
// below it. parent is the catalog directory location belongs to, or nil to
// make location a root.
//
// The returned count is the number of items created. When an error stops the
// walk, items created before it stay committed and the count reflects them.
func (s *Service) AddItemRecursive(ctx context.Context, location string, user *User, policy Policy, parent *Item) (int, error) {
	if !policy.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPolicy, policy)
	}
	root := normalizeLocation(location)
	s.logger.Info("ingesting", "path", root, "policy", string(policy))

	count, err := s.addItemRecursive(ctx, root, root, user, policy, parent)
	if err != nil {
		s.logger.Error("ingestion stopped", "path", root, "added", count, "error", err)
		return count, err
	}
	s.logger.Info("ingestion complete", "path", root, "added", count)
	return count, nil
}

func (s *Service) addItemRecursive(ctx context.Context, root, location string, user *User, policy Policy, parent *Item) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	isDir, err := s.fsmgr.IsDirectory(location)
	if err != nil {
		return 0, fmt.Errorf("checking %s: %w", location, err)
	}
	if !isDir {
		return s.AddItem(ctx, location, user, policy, parent, false)
	}

	count, err := s.AddItem(ctx, location, user, policy, parent, true)
	if err != nil {
		return count, err
	}

	// The directory may have existed already; new entries still hang off it.
	dir, err := s.database.FindItemByPath(ctx, location)
	if err != nil {
		return count, fmt.Errorf("finding directory item: %w", err)
	}
	if dir == nil {
		return count, fmt.Errorf("directory item %s: %w", location, ErrNotFound)
	}

	names, err := s.fsmgr.ListDirectory(location)
	if err != nil {
		return count, fmt.Errorf("listing %s: %w", location, err)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		child := filepath.Join(location, name)
		ignored, err := s.fsmgr.IsIgnored(child, root)
		if err != nil {
			return count, fmt.Errorf("checking ignore rules: %w", err)
		}
		if ignored {
			s.logger.Debug("ignored", "path", child)
			continue
		}

		n, err := s.addItemRecursive(ctx, root, child, user, policy, dir)
		count += n
		if err != nil {
			return count, err
		}
	}

	return count, nil
}

// AddItem registers a single path and returns 1 if an item was created.
//
// Paths that are already cataloged and files whose type is not media are
// skipped with a count of 0 and no error. When directory is set the path is
// not sniffed and is recorded as a directory.
func (s *Service) AddItem(ctx context.Context, location string, user *User, policy Policy, parent *Item, directory bool) (int, error) {
	if !policy.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPolicy, policy)
	}
	if policy == PolicySelf && user == nil {
		return 0, fmt.Errorf("%w: %q requires a user", ErrInvalidPolicy, policy)
	}
	if parent != nil && !parent.IsDirectory() {
		return 0, fmt.Errorf("%w: %s", ErrNotDirectory, parent.Path)
	}

	location = normalizeLocation(location)

	existing, err := s.database.FindItemByPath(ctx, location)
	if err != nil {
		return 0, fmt.Errorf("checking for existing item: %w", err)
	}
	if existing != nil {
		s.logger.Debug("already cataloged", "path", location)
		return 0, nil
	}

	mimeType := DirectoryMimeType
	if !directory {
		mimeType, err = s.classifier.Classify(location)
		if err != nil {
			return 0, fmt.Errorf("classifying %s: %w", location, err)
		}
	}
	if !s.classifier.IsMedia(mimeType) {
		s.logger.Debug("skipping", "path", location, "type", mimeType, "reason", ErrUnsupportedMedia)
		return 0, nil
	}

	itemType, err := s.database.FindOrCreateItemType(ctx, mimeType, s.classifier.MediaType(mimeType))
	if err != nil {
		return 0, fmt.Errorf("resolving item type: %w", err)
	}

	item := &Item{
		Name:      filepath.Base(location),
		Type:      itemType.Type,
		Kind:      itemType.Kind,
		Path:      location,
		IsRoot:    parent == nil,
		TimeAdded: s.clock.Now(),
	}
	var parentID *int64
	if parent != nil {
		parentID = &parent.ID
	}

	if err := s.database.CreateItem(ctx, item, itemType.ID, parentID); err != nil {
		if errors.Is(err, ErrDuplicatePath) {
			// Lost a race with a concurrent ingestion of the same path.
			s.logger.Debug("already cataloged", "path", location)
			return 0, nil
		}
		return 0, fmt.Errorf("creating item: %w", err)
	}

	// The item is committed from here on, so failures still count it.
	if err := s.applyPolicy(ctx, item, user, policy); err != nil {
		return 1, fmt.Errorf("applying %s policy to %s: %w", policy, location, err)
	}
	s.indexItem(ctx, item)

	s.logger.Debug("item added", "id", item.ID, "path", location, "type", mimeType)
	return 1, nil
}

func (s *Service) applyPolicy(ctx context.Context, item *Item, user *User, policy Policy) error {
	switch policy {
	case PolicyAll:
		return s.GrantPermission(ctx, item, nil, false)
	case PolicyAdmin:
		return s.GrantPermission(ctx, item, nil, true)
	case PolicySelf:
		return s.GrantPermission(ctx, item, user, false)
	}
	return nil
}

// RemoveItemRecursive deletes an item and everything below it, children
// first. Returns the number of items removed.
func (s *Service) RemoveItemRecursive(ctx context.Context, item *Item) (int, error) {
	count := 0
	err := s.walkPostOrder(ctx, item, func(it *Item) error {
		if err := s.database.DeleteItem(ctx, it.ID); err != nil {
			return fmt.Errorf("deleting %s: %w", it.Path, err)
		}
		s.unindexItem(ctx, it.ID)
		s.logger.Debug("item removed", "id", it.ID, "path", it.Path)
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	s.logger.Info("removed", "path", item.Path, "count", count)
	return count, nil
}

// walkPostOrder visits every item below item before item itself, siblings in
// insertion order. It fails with ErrCycleDetected if an item is its own ancestor.
func (s *Service) walkPostOrder(ctx context.Context, item *Item, visit func(*Item) error) error {
	return s.postOrder(ctx, item, make(map[int64]bool), visit)
}

func (s *Service) postOrder(ctx context.Context, item *Item, ancestors map[int64]bool, visit func(*Item) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ancestors[item.ID] {
		return fmt.Errorf("%w: item %d (%s)", ErrCycleDetected, item.ID, item.Path)
	}
	ancestors[item.ID] = true
	defer delete(ancestors, item.ID)

	children, err := s.database.FindChildren(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("finding children of %s: %w", item.Path, err)
	}
	for _, child := range children {
		if err := s.postOrder(ctx, child, ancestors, visit); err != nil {
			return err
		}
	}
	return visit(item)
}

// normalizeLocation strips trailing separators, keeping a bare root intact.
func normalizeLocation(location string) string {
	trimmed := strings.TrimRight(location, string(filepath.Separator))
	if trimmed == "" && location != "" {
		return string(filepath.Separator)
	}
	return trimmed
}
