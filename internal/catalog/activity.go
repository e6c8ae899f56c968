package catalog

import (
	"context"
	"fmt"
)

// RecordView counts one view of item by user.
func (s *Service) RecordView(ctx context.Context, item *Item, user *User) error {
	if err := s.database.RecordView(ctx, item.ID, user.ID); err != nil {
		return fmt.Errorf("recording view: %w", err)
	}
	item.Views++
	return nil
}

// RateItem stores a 0..10 rating of item by user.
func (s *Service) RateItem(ctx context.Context, item *Item, user *User, value int) (*Rating, error) {
	rating := &Rating{
		UserID: user.ID,
		ItemID: item.ID,
		Rating: value,
		Time:   s.clock.Now(),
	}
	if err := s.validate.Struct(rating); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRating, err)
	}
	if item.IsDirectory() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidRating, item.Path)
	}

	if err := s.database.CreateRating(ctx, rating); err != nil {
		return nil, fmt.Errorf("creating rating: %w", err)
	}
	s.logger.Debug("item rated", "item", item.ID, "user", user.ID, "rating", value)
	return rating, nil
}

// SuggestItem drops item into to's inbox. The sender must have access to it.
func (s *Service) SuggestItem(ctx context.Context, from, to *User, item *Item) (*Suggestion, error) {
	ok, err := s.CanAccess(ctx, item, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("item %d: %w", item.ID, ErrNotFound)
	}

	suggestion := &Suggestion{
		FromUserID: from.ID,
		ToUserID:   to.ID,
		ItemID:     item.ID,
		Time:       s.clock.Now(),
	}
	if err := s.database.CreateSuggestion(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("creating suggestion: %w", err)
	}
	s.logger.Info("item suggested", "item", item.ID, "from", from.Username, "to", to.Username)
	return suggestion, nil
}

// GetSuggestionInbox returns the suggestions addressed to user, newest first.
func (s *Service) GetSuggestionInbox(ctx context.Context, user *User) ([]*Suggestion, error) {
	suggestions, err := s.database.FindSuggestionsForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("finding suggestions: %w", err)
	}
	return suggestions, nil
}

// UpdateMetadata stores descriptive fields for item and refreshes its
// search entry.
func (s *Service) UpdateMetadata(ctx context.Context, item *Item, meta *ItemMetadata) (*Item, error) {
	if err := s.database.UpdateItemMetadata(ctx, item.ID, meta); err != nil {
		return nil, fmt.Errorf("updating metadata: %w", err)
	}
	updated, err := s.GetItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	s.indexItem(ctx, updated)
	return updated, nil
}
