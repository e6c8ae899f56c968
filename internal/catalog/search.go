package catalog

import (
	"context"
	"fmt"
)

// SearchIndex is a full-text index over item names and metadata.
// It stores no permissions; results are filtered per user by the service.
type SearchIndex interface {
	Index(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id int64) error

	// Search returns up to limit matching item ids, best match first,
	// skipping the first offset hits.
	Search(ctx context.Context, query string, limit, offset int) ([]int64, error)
}

// DefaultSearchLimit applies when SearchItems is called with no limit.
const DefaultSearchLimit = 50

// searchPageFactor sizes index pages relative to the requested limit, since
// hits the user may not access are dropped after each page.
const searchPageFactor = 4

// SearchItems runs query against the index and returns up to limit hits user
// may access, best match first. Without an index it returns no results.
func (s *Service) SearchItems(ctx context.Context, user *User, query string, limit int) ([]*Item, error) {
	if s.index == nil {
		return []*Item{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	pageSize := limit * searchPageFactor
	items := make([]*Item, 0, limit)
	for offset := 0; len(items) < limit; offset += pageSize {
		ids, err := s.index.Search(ctx, query, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("searching: %w", err)
		}

		page := make([]*Item, 0, len(ids))
		for _, id := range ids {
			item, err := s.database.FindItemByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("finding item: %w", err)
			}
			// The index can trail a removal made by another process.
			if item == nil {
				continue
			}
			page = append(page, item)
		}

		visible, err := s.FilterItems(ctx, page, user)
		if err != nil {
			return nil, err
		}
		for _, item := range visible {
			if len(items) == limit {
				break
			}
			items = append(items, item)
		}

		if len(ids) < pageSize {
			break
		}
	}
	return items, nil
}

// ReindexAll loads every cataloged item into the index.
func (s *Service) ReindexAll(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}

	items, err := s.database.ListItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing items: %w", err)
	}
	for i, item := range items {
		if err := s.index.Index(ctx, item); err != nil {
			return i, fmt.Errorf("indexing %s: %w", item.Path, err)
		}
	}
	s.logger.Debug("search index rebuilt", "items", len(items))
	return len(items), nil
}

// indexItem and unindexItem keep the index in step with the store. A failed
// index update only degrades search, so it is logged rather than returned.
func (s *Service) indexItem(ctx context.Context, item *Item) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(ctx, item); err != nil {
		s.logger.Warn("failed to index item", "id", item.ID, "error", err)
	}
}

func (s *Service) unindexItem(ctx context.Context, id int64) {
	if s.index == nil {
		return
	}
	if err := s.index.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to remove item from index", "id", id, "error", err)
	}
}
