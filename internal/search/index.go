// Package search is an in-memory full-text index over catalog items.
package search

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	bleve "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"mediavault/internal/catalog"
)

// Index implements catalog.SearchIndex on a memory-only bleve index.
type Index struct {
	index bleve.Index
}

// document is what gets stored in bleve per item.
type document struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	NameExact string   `json:"name_exact"`
	Title     string   `json:"title"`
	Artists   []string `json:"artists"`
	Album     string   `json:"album"`
	Kind      string   `json:"kind"`
}

// New creates an empty index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	return &Index{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	text := bleve.NewTextFieldMapping()
	text.Analyzer = "standard"
	text.Store = false
	text.Index = true

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = false
	keyword.Index = true

	doc.AddFieldMappingsAt("id", keyword)
	doc.AddFieldMappingsAt("name", text)
	doc.AddFieldMappingsAt("name_exact", keyword)
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("artists", text)
	doc.AddFieldMappingsAt("album", text)
	doc.AddFieldMappingsAt("kind", keyword)

	m.DefaultMapping = doc
	return m
}

// Index adds or replaces the entry for item.
func (x *Index) Index(ctx context.Context, item *catalog.Item) error {
	doc := document{
		ID:        docID(item.ID),
		Name:      displayName(item.Name),
		NameExact: strings.ToLower(displayName(item.Name)),
		Artists:   item.Artists,
		Kind:      string(item.Kind),
	}
	if item.Title != nil {
		doc.Title = *item.Title
	}
	if item.Album != nil {
		doc.Album = *item.Album
	}
	return x.index.Index(doc.ID, doc)
}

// Delete removes the entry for id. Unknown ids are ignored.
func (x *Index) Delete(ctx context.Context, id int64) error {
	return x.index.Delete(docID(id))
}

// Search returns ids of items matching query, best match first. offset skips
// that many hits so callers can page through results.
func (x *Index) Search(ctx context.Context, query string, limit, offset int) ([]int64, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = catalog.DefaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	const (
		boostNameExact  = 50.0
		boostNamePhrase = 12.0
		boostNameToken  = 3.0
		boostOther      = 1.0
	)

	q := bleve.NewBooleanQuery()

	exact := bleve.NewTermQuery(query)
	exact.SetField("name_exact")
	exact.SetBoost(boostNameExact)
	q.AddShould(exact)

	phrase := bleve.NewMatchPhraseQuery(query)
	phrase.SetField("name")
	phrase.SetBoost(boostNamePhrase)
	q.AddShould(phrase)

	for _, tok := range strings.Fields(query) {
		fuzz := 1
		if len(tok) >= 6 {
			fuzz = 2
		}
		for _, field := range []string{"name", "title", "artists", "album"} {
			boost := boostOther
			if field == "name" || field == "title" {
				boost = boostNameToken
			}

			fq := bleve.NewFuzzyQuery(tok)
			fq.SetField(field)
			fq.SetFuzziness(fuzz)
			fq.SetBoost(boost)
			q.AddShould(fq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(field)
			pq.SetBoost(boost)
			q.AddShould(pq)
		}
	}
	q.SetMinShould(1)

	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	req.SortBy([]string{"-_score", "_id"})

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	ids := make([]int64, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad document id %q: %w", hit.ID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Count returns the number of indexed items.
func (x *Index) Count() (uint64, error) {
	return x.index.DocCount()
}

func (x *Index) Close() error {
	return x.index.Close()
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// displayName turns a file name into searchable words:
// "Star.Wars_1977.mkv" becomes "Star Wars 1977".
func displayName(name string) string {
	if ext := filepath.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	}), " ")
}

var _ catalog.SearchIndex = (*Index)(nil)
