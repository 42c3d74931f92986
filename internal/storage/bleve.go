package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pathshala/pathshala/internal/conditions"
	"github.com/pathshala/pathshala/internal/models"
)

// substringAnalyzer keeps each field as one lower-cased token so wildcard
// queries behave like substring matches over the whole value.
const substringAnalyzer = "substring"

// BleveStore implements Store on a Bleve index. The JSON record is kept as a
// stored, unindexed field.
type BleveStore struct {
	index bleve.Index
}

// NewBleveStore creates or opens a Bleve index at path.
// If you change the index mapping in code, remove the index directory to force a full re-import.
func NewBleveStore(path string) (*BleveStore, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveStore{index: index}, nil
	}

	im, err := newIndexMapping()
	if err != nil {
		return nil, err
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveStore{index: index}, nil
}

func newIndexMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(substringAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register analyzer: %w", err)
	}
	im.DefaultAnalyzer = substringAnalyzer

	docMapping := bleve.NewDocumentMapping()
	keyword := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("category", keyword)
	docMapping.AddFieldMappingsAt("source", keyword)
	docMapping.AddFieldMappingsAt("created_at", bleve.NewDateTimeFieldMapping())

	stored := bleve.NewTextFieldMapping()
	stored.Index = false
	stored.Store = true
	stored.IncludeInAll = false
	docMapping.AddFieldMappingsAt("data", stored)

	im.AddDocumentMapping("record", docMapping)
	im.DefaultType = "record"
	im.DefaultMapping = docMapping
	return im, nil
}

func docID(category models.Category, id string) string {
	return string(category) + "/" + id
}

// Put indexes rec, replacing any record with the same category and ID.
func (b *BleveStore) Put(ctx context.Context, rec models.Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	meta := rec.Meta()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	doc := map[string]interface{}{
		"category":   string(rec.Category()),
		"source":     meta.Source,
		"created_at": meta.CreatedAt.UTC(),
		"data":       string(data),
	}
	for field, value := range rec.SearchFields() {
		if value != "" {
			doc[field] = value
		}
	}
	if err := b.index.Index(docID(rec.Category(), meta.ID), doc); err != nil {
		return fmt.Errorf("failed to index record %s/%s: %w", rec.Category(), meta.ID, err)
	}
	return nil
}

// Get returns a record by category and ID.
func (b *BleveStore) Get(ctx context.Context, category models.Category, id string) (models.Record, error) {
	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{docID(category, id)}))
	req.Fields = []string{"data"}
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	if len(res.Hits) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, category, id)
	}
	return decodeHit(category, res.Hits[0].Fields)
}

// Delete removes a record by category and ID.
func (b *BleveStore) Delete(ctx context.Context, category models.Category, id string) error {
	if _, err := b.Get(ctx, category, id); err != nil {
		return err
	}
	return b.index.Delete(docID(category, id))
}

// DeleteBySource removes every record whose source is source, except keep.
// The stale set is collected first and removed in one batch.
func (b *BleveStore) DeleteBySource(ctx context.Context, source string, keep ...Key) (int64, error) {
	if source == "" {
		return 0, nil
	}
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[docID(k.Category, k.ID)] = true
	}

	q := bleve.NewTermQuery(source)
	q.SetField("source")
	const pageSize = 500
	batch := b.index.NewBatch()
	for from := 0; ; from += pageSize {
		req := bleve.NewSearchRequestOptions(q, pageSize, from, false)
		req.SortBy([]string{"_id"})
		res, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return 0, fmt.Errorf("Bleve search failed: %w", err)
		}
		for _, hit := range res.Hits {
			if !kept[hit.ID] {
				batch.Delete(hit.ID)
			}
		}
		if len(res.Hits) < pageSize {
			break
		}
	}
	n := int64(batch.Size())
	if n == 0 {
		return 0, nil
	}
	if err := b.index.Batch(batch); err != nil {
		return 0, fmt.Errorf("failed to delete records by source: %w", err)
	}
	return n, nil
}

var wildcardStripper = strings.NewReplacer("*", "")

// Select returns up to limit records of category matching any condition, newest first.
func (b *BleveStore) Select(ctx context.Context, category models.Category, conds conditions.List, limit int) ([]models.Record, error) {
	if len(conds) == 0 {
		return nil, nil
	}
	if err := checkConditions(category, conds); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSelectLimit
	}

	matchers := make([]blevequery.Query, 0, len(conds))
	for _, c := range conds {
		pattern := wildcardStripper.Replace(strings.ToLower(c.Pattern))
		if pattern == "" {
			continue
		}
		wq := bleve.NewWildcardQuery("*" + pattern + "*")
		wq.SetField(c.Field)
		matchers = append(matchers, wq)
	}
	if len(matchers) == 0 {
		return nil, nil
	}
	catQuery := bleve.NewTermQuery(string(category))
	catQuery.SetField("category")
	q := bleve.NewConjunctionQuery(catQuery, bleve.NewDisjunctionQuery(matchers...))

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"data"}
	req.SortBy([]string{"-created_at", "_id"})
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]models.Record, 0, len(res.Hits))
	for _, hit := range res.Hits {
		rec, err := decodeHit(category, hit.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of records in category.
func (b *BleveStore) Count(ctx context.Context, category models.Category) (int64, error) {
	q := bleve.NewTermQuery(string(category))
	q.SetField("category")
	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("Bleve search failed: %w", err)
	}
	return int64(res.Total), nil
}

// Close closes the index.
func (b *BleveStore) Close() error {
	return b.index.Close()
}

func decodeHit(category models.Category, fields map[string]interface{}) (models.Record, error) {
	data, ok := fields["data"].(string)
	if !ok {
		return nil, fmt.Errorf("stored record data missing")
	}
	return models.DecodeRecord(category, []byte(data))
}
