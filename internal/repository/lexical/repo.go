// Package lexical adapts the RediSearch full-text engine into the
// clause retrieval backend contract.
package lexical

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/clausehub/clausehub/internal/db"
	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/domain/clause"
)

// Stored hash field names for a clause document.
const (
	fieldContractID = "contract_id"
	fieldClauseID   = "clause_id"
	fieldHeading    = "heading"
	fieldText       = "text"
	fieldPage       = "page"
	fieldLineStart  = "line_start"
	fieldLineEnd    = "line_end"
	fieldLang       = "lang"
	fieldSource     = "source"
)

// Highlight fragment settings. The separator is a control character a
// contract clause cannot contain, so splitting is unambiguous.
const (
	highlightOpenTag  = "<em>"
	highlightCloseTag = "</em>"
	highlightFrags    = 3
	highlightFragLen  = 25
	fragSeparator     = "\x1f"
)

// store is the consumer interface for lexical operations (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements the lexical retrieval backend over a RediSearch store.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a lexical repository. keyPrefix namespaces all keys and
// the FT index.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

func (r *Repo) indexName() string {
	return r.keyPrefix + "clauses:idx"
}

func (r *Repo) docPrefix() string {
	return r.keyPrefix + "clauses:"
}

func (r *Repo) docKey(k clause.Key) string {
	return r.docPrefix() + k.String()
}

// Search runs a BM25 query and returns raw-scored hits with highlight
// fragments. Scores come back on the engine's own scale; normalization
// happens downstream.
func (r *Repo) Search(ctx context.Context, query string, limit int) ([]*clause.Hit, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName: r.indexName(),
		Query:     query,
		TopK:      limit,
		Highlight: &db.Highlight{
			Field:     fieldText,
			OpenTag:   highlightOpenTag,
			CloseTag:  highlightCloseTag,
			Frags:     highlightFrags,
			FragLen:   highlightFragLen,
			Separator: fragSeparator,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w: %w", domain.ErrBackendUnavailable, err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	// The FT result carries the highlighted text; hydrate the raw clause
	// fields from the stored hashes to build the display snippet.
	keys := make([]string, len(sr.Entries))
	for i, e := range sr.Entries {
		keys[i] = e.Key
	}
	docs, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hydrate clauses: %w: %w", domain.ErrBackendUnavailable, err)
	}

	hits := make([]*clause.Hit, 0, len(sr.Entries))
	for i, e := range sr.Entries {
		doc := docs[i]
		if len(doc) == 0 {
			// Index entry without a backing document; skip rather than
			// fabricate a keyless hit.
			continue
		}
		hit := hitFromDoc(doc)
		hit.Score = e.Score
		hit.Highlight = splitFragments(e.Fields[fieldText])
		hits = append(hits, hit)
	}

	return hits, nil
}

// EnsureIndex creates the clause FT index if absent. Create-if-absent
// only; dropping or resetting indexes is not a service operation.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := r.indexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:        name,
		StorageType: db.StorageHash,
		Prefixes:    []string{r.docPrefix()},
		Fields: []db.IndexField{
			{Name: fieldContractID, Type: db.IndexFieldTag},
			{Name: fieldClauseID, Type: db.IndexFieldTag},
			{Name: fieldHeading, Type: db.IndexFieldText},
			{Name: fieldText, Type: db.IndexFieldText},
			{Name: fieldPage, Type: db.IndexFieldNumeric},
			{Name: fieldLang, Type: db.IndexFieldTag},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// IndexClauses upserts clause documents in one pipelined write.
func (r *Repo) IndexClauses(ctx context.Context, clauses []clause.Clause) error {
	if len(clauses) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(clauses))
	for i := range clauses {
		c := &clauses[i]
		fields := map[string]string{
			fieldContractID: c.ContractID,
			fieldClauseID:   c.ClauseID,
			fieldHeading:    c.Heading,
			fieldText:       c.Text,
			fieldLang:       c.Lang,
		}
		if c.Page != nil {
			fields[fieldPage] = strconv.Itoa(*c.Page)
		}
		if c.LineStart != nil {
			fields[fieldLineStart] = strconv.Itoa(*c.LineStart)
		}
		if c.LineEnd != nil {
			fields[fieldLineEnd] = strconv.Itoa(*c.LineEnd)
		}
		if c.Source != "" {
			fields[fieldSource] = c.Source
		}
		items[i] = db.HashSetItem{Key: r.docKey(c.Key()), Fields: fields}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("index clauses: %w", err)
	}
	return nil
}

func hitFromDoc(doc map[string]string) *clause.Hit {
	hit := &clause.Hit{
		ContractID:  doc[fieldContractID],
		ClauseID:    doc[fieldClauseID],
		Heading:     doc[fieldHeading],
		TextSnippet: clause.Snippet(doc[fieldText]),
		Lang:        doc[fieldLang],
	}
	if hit.Lang == "" {
		hit.Lang = "en"
	}
	hit.Page = parseOptInt(doc[fieldPage])
	hit.LineRange = [2]*int{parseOptInt(doc[fieldLineStart]), parseOptInt(doc[fieldLineEnd])}
	return hit
}

func parseOptInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func splitFragments(highlighted string) []string {
	if highlighted == "" {
		return nil
	}
	parts := strings.Split(highlighted, fragSeparator)
	frags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			frags = append(frags, p)
		}
	}
	return frags
}
