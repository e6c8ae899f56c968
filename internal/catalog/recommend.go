package catalog

import (
	"context"
	"fmt"
	"sort"
)

const (
	maxSuggestions   = 10
	maxSeenSuggested = 3
	scoreScale       = 10.0
	neutralRating    = 5.0

	// DefaultLatestCount is the number of items GetLatestItems returns when
	// the caller does not ask for a specific count.
	DefaultLatestCount = 10
)

type scoredItem struct {
	item  *Item
	score float64
	seen  bool
}

// GetSuggestedItems ranks the non-directory items user may access and
// returns at most ten of them. Unseen items take precedence; up to three
// already-seen items fill out the list.
func (s *Service) GetSuggestedItems(ctx context.Context, user *User) ([]*Item, error) {
	if user == nil {
		return []*Item{}, nil
	}

	accessible, err := s.database.FindAccessibleItems(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("finding accessible items: %w", err)
	}
	items := make([]*Item, 0, len(accessible))
	ids := make([]int64, 0, len(accessible))
	for _, item := range accessible {
		if item.IsDirectory() {
			continue
		}
		items = append(items, item)
		ids = append(ids, item.ID)
	}
	if len(items) == 0 {
		return []*Item{}, nil
	}

	ratings, err := s.database.FindAverageRatings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("finding ratings: %w", err)
	}
	seen, err := s.database.FindSeenItemIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("finding seen items: %w", err)
	}

	maxViews := maxViewCount(items)
	scored := make([]scoredItem, 0, len(items))
	for _, item := range items {
		avg, ok := ratings[item.ID]
		if !ok {
			avg = neutralRating
		}
		scored = append(scored, scoredItem{
			item:  item,
			score: score(item.Views, maxViews, avg),
			seen:  seen[item.ID],
		})
	}

	return rankSuggestions(scored), nil
}

// maxViewCount returns the highest view count, never less than 1.
func maxViewCount(items []*Item) int64 {
	var highest int64 = 1
	for _, item := range items {
		if item.Views > highest {
			highest = item.Views
		}
	}
	return highest
}

// score adds popularity, scaled against the most viewed item, to the mean rating.
func score(views, maxViews int64, rating float64) float64 {
	if maxViews <= 0 {
		maxViews = 1
	}
	return float64(views)/float64(maxViews)*scoreScale + rating
}

func rankSuggestions(scored []scoredItem) []*Item {
	var seen, unseen []scoredItem
	for _, si := range scored {
		if si.seen {
			seen = append(seen, si)
		} else {
			unseen = append(unseen, si)
		}
	}
	byScore := func(list []scoredItem) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].score > list[j].score })
	}
	byScore(seen)
	byScore(unseen)

	unseenSlots := maxSuggestions - len(seen)
	if len(seen) >= maxSeenSuggested {
		seen = seen[:maxSeenSuggested]
		unseenSlots = maxSuggestions - maxSeenSuggested
	}
	if len(unseen) > unseenSlots {
		unseen = unseen[:unseenSlots]
	}

	result := make([]*Item, 0, len(unseen)+len(seen))
	for _, si := range unseen {
		result = append(result, si.item)
	}
	for _, si := range seen {
		result = append(result, si.item)
	}
	return result
}

// GetLatestItems returns the most recently added non-directory items user may
// access, newest first. A count of zero or less uses DefaultLatestCount.
func (s *Service) GetLatestItems(ctx context.Context, user *User, count int) ([]*Item, error) {
	if user == nil {
		return []*Item{}, nil
	}
	if count <= 0 {
		count = DefaultLatestCount
	}
	items, err := s.database.FindLatestAccessibleItems(ctx, user.ID, count)
	if err != nil {
		return nil, fmt.Errorf("finding latest items: %w", err)
	}
	return items, nil
}
