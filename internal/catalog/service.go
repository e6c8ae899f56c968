package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Service is the catalog engine. It holds no catalog state of its own: every
// operation reads and writes through the injected Database, so a Service is
// cheap to construct per command.
type Service struct {
	database   Database
	fsmgr      FilesystemManager
	classifier MimeClassifier
	index      SearchIndex
	logger     Logger
	clock      Clock
	idgen      IDGenerator
	validate   *validator.Validate
}

// NewService creates a new Service with the provided dependencies.
// The search index is optional; see SetSearchIndex.
func NewService(database Database, fsmgr FilesystemManager, classifier MimeClassifier, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		database:   database,
		fsmgr:      fsmgr,
		classifier: classifier,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// SetSearchIndex attaches a search index. Ingestion and removal keep it up to
// date from then on; call ReindexAll to load existing items.
func (s *Service) SetSearchIndex(index SearchIndex) {
	s.index = index
}

// GetItem returns the item with the given id, or ErrNotFound.
func (s *Service) GetItem(ctx context.Context, id int64) (*Item, error) {
	item, err := s.database.FindItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	return item, nil
}

// GetHistory returns the most recent journal entries, newest first.
// A limit of zero or less returns the whole journal.
func (s *Service) GetHistory(ctx context.Context, limit int) ([]*Operation, error) {
	if limit <= 0 {
		limit = -1
	}
	ops, err := s.database.ListOperations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
