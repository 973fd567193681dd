// Package clause defines the contract clause domain model shared by
// both retrieval backends and the fusion pipeline.
package clause

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clausehub/clausehub/internal/domain"
)

// SnippetLimit bounds the display snippet length in runes.
const SnippetLimit = 400

// Key identifies a clause across backends. Both parts are required;
// the pair is the join key for result fusion.
type Key struct {
	ContractID string
	ClauseID   string
}

// String renders the key in its canonical "contract#clause" form.
func (k Key) String() string {
	return k.ContractID + "#" + k.ClauseID
}

// Clause is an indexable contract clause record.
type Clause struct {
	ContractID string `json:"contract_id"`
	ClauseID   string `json:"clause_id"`
	Heading    string `json:"heading,omitempty"`
	Text       string `json:"text"`
	Page       *int   `json:"page,omitempty"`
	LineStart  *int   `json:"line_start,omitempty"`
	LineEnd    *int   `json:"line_end,omitempty"`
	Lang       string `json:"lang,omitempty"`
	Source     string `json:"source,omitempty"`
}

// Key returns the clause's join key.
func (c *Clause) Key() Key {
	return Key{ContractID: c.ContractID, ClauseID: c.ClauseID}
}

// Validate checks that the clause is indexable.
func (c *Clause) Validate() error {
	if strings.TrimSpace(c.ContractID) == "" {
		return fmt.Errorf("%w: contract_id is required", domain.ErrInvalidClause)
	}
	if strings.TrimSpace(c.ClauseID) == "" {
		return fmt.Errorf("%w: clause_id is required", domain.ErrInvalidClause)
	}
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: text is required", domain.ErrInvalidClause)
	}
	return nil
}

// Hit is one retrieved clause flowing through the pipeline. Score is
// the raw backend score, kept for display only; NormScore is the
// per-request min-max calibrated value the fusion stage consumes, and
// is never serialized. BM25Score, VecScore and HybridScore are filled
// during fusion; RerankerScore only when the oracle stage runs.
type Hit struct {
	ContractID  string   `json:"contract_id"`
	ClauseID    string   `json:"clause_id"`
	Heading     string   `json:"heading,omitempty"`
	TextSnippet string   `json:"text_snippet"`
	Page        *int     `json:"page,omitempty"`
	LineRange   [2]*int  `json:"line_range,omitempty"`
	Lang        string   `json:"lang"`
	Score       float64  `json:"score"`
	Highlight   []string `json:"highlight,omitempty"`

	NormScore float64 `json:"-"`

	BM25Score     float64  `json:"bm25_score"`
	VecScore      float64  `json:"vec_score"`
	HybridScore   float64  `json:"hybrid_score"`
	RerankerScore *float64 `json:"reranker_score,omitempty"`
}

// Key returns the hit's join key.
func (h *Hit) Key() Key {
	return Key{ContractID: h.ContractID, ClauseID: h.ClauseID}
}

// Validate checks that the hit carries a complete join key.
func (h *Hit) Validate() error {
	if h.ContractID == "" {
		return errors.New("missing contract_id")
	}
	if h.ClauseID == "" {
		return errors.New("missing clause_id")
	}
	return nil
}

// Snippet truncates text to SnippetLimit runes for display. The cut is
// rune-aligned so multi-byte text is never split mid-character.
func Snippet(text string) string {
	if utf8.RuneCountInString(text) <= SnippetLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:SnippetLimit])
}
