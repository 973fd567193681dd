package clausehub

import "github.com/clausehub/clausehub/internal/domain/clause"

// Clause is an indexable contract clause.
type Clause struct {
	ContractID string
	ClauseID   string
	Heading    string
	Text       string
	Page       *int
	LineStart  *int
	LineEnd    *int
	Lang       string
	Source     string
}

// Hit is one retrieved clause with its scores.
type Hit struct {
	ContractID    string
	ClauseID      string
	Heading       string
	TextSnippet   string
	Page          *int
	LineRange     [2]*int
	Lang          string
	Score         float64
	Highlight     []string
	BM25Score     float64
	VecScore      float64
	HybridScore   float64
	RerankerScore *float64
}

// AskRequest is a hybrid search query. Zero TopK means the default
// (10); a nil Alpha means the client's default lexical weight.
type AskRequest struct {
	Query     string
	TopK      int
	Alpha     *float64
	Rerank    bool
	Summarize bool
}

// AskResult is the outcome of one search.
type AskResult struct {
	Results  []Hit
	Reranked bool
	Summary  string
}

func clauseToDomain(c Clause) clause.Clause {
	return clause.Clause{
		ContractID: c.ContractID,
		ClauseID:   c.ClauseID,
		Heading:    c.Heading,
		Text:       c.Text,
		Page:       c.Page,
		LineStart:  c.LineStart,
		LineEnd:    c.LineEnd,
		Lang:       c.Lang,
		Source:     c.Source,
	}
}

func hitFromDomain(h *clause.Hit) Hit {
	return Hit{
		ContractID:    h.ContractID,
		ClauseID:      h.ClauseID,
		Heading:       h.Heading,
		TextSnippet:   h.TextSnippet,
		Page:          h.Page,
		LineRange:     h.LineRange,
		Lang:          h.Lang,
		Score:         h.Score,
		Highlight:     h.Highlight,
		BM25Score:     h.BM25Score,
		VecScore:      h.VecScore,
		HybridScore:   h.HybridScore,
		RerankerScore: h.RerankerScore,
	}
}
