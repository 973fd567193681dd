package db

// Highlight describes matched-fragment extraction for a text search.
// The backend returns the highlighted field as fragments joined by
// Separator; callers split on it.
type Highlight struct {
	Field     string
	OpenTag   string
	CloseTag  string
	Frags     int
	FragLen   int
	Separator string
}

// TextQuery is the input for BM25 text search.
type TextQuery struct {
	IndexName string
	Query     string
	TopK      int
	Highlight *Highlight
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
