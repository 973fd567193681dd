// Package vector adapts the Qdrant dense-vector engine into the clause
// retrieval backend contract.
package vector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/domain/clause"
)

// Payload field names for a clause point.
const (
	payloadContractID = "contract_id"
	payloadClauseID   = "clause_id"
	payloadHeading    = "heading"
	payloadText       = "text"
	payloadPage       = "page"
	payloadLineStart  = "line_start"
	payloadLineEnd    = "line_end"
	payloadLang       = "lang"
)

// upsertBatchSize bounds a single Upsert call during ingestion.
const upsertBatchSize = 256

// Config holds the Qdrant connection and collection settings.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimensions int
}

// Repo implements the vector retrieval backend: query text is embedded
// first, then matched against the clause collection by cosine similarity.
type Repo struct {
	client     *qdrant.Client
	embedder   domain.Embedder
	collection string
	dimensions int
}

// New creates a Qdrant-backed vector repository.
func New(cfg Config, embedder domain.Embedder) (*Repo, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &Repo{
		client:     client,
		embedder:   embedder,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}, nil
}

// Close shuts down the underlying gRPC connection.
func (r *Repo) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close qdrant client: %w", err)
	}
	return nil
}

// Search embeds the query and runs a cosine KNN search. Returned hits
// carry the raw similarity score and no highlight spans.
func (r *Repo) Search(ctx context.Context, query string, limit int) ([]*clause.Hit, error) {
	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	points, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(emb.Embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w: %w", domain.ErrBackendUnavailable, err)
	}

	hits := make([]*clause.Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, hitFromPayload(p.GetPayload(), float64(p.GetScore())))
	}
	return hits, nil
}

// EnsureCollection creates the clause collection if absent.
// Create-if-absent only; resetting collections is not a service operation.
func (r *Repo) EnsureCollection(ctx context.Context) error {
	exists, err := r.client.CollectionExists(ctx, r.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", r.collection, err)
	}
	if exists {
		return nil
	}

	err = r.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(r.dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", r.collection, err)
	}
	return nil
}

// IndexClauses embeds clause texts and upserts them in batches.
// Point IDs are derived deterministically from the clause key, so
// re-ingesting the same clause overwrites the previous point.
func (r *Repo) IndexClauses(ctx context.Context, clauses []clause.Clause) error {
	if len(clauses) == 0 {
		return nil
	}

	texts := make([]string, len(clauses))
	for i := range clauses {
		texts[i] = clauses[i].Text
	}

	var vectors [][]float32
	if be, ok := r.embedder.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err != nil {
			return fmt.Errorf("vectorize clauses: %w", err)
		}
		vectors = res.Embeddings
	} else {
		res, err := domain.BatchFallback(ctx, r.embedder, texts)
		if err != nil {
			return fmt.Errorf("vectorize clauses: %w", err)
		}
		vectors = res.Embeddings
	}

	points := make([]*qdrant.PointStruct, len(clauses))
	for i := range clauses {
		points[i] = &qdrant.PointStruct{
			Id:      pointID(clauses[i].Key()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: payloadFromClause(&clauses[i]),
		}
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		_, err := r.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: r.collection,
			Points:         points[start:end],
		})
		if err != nil {
			return fmt.Errorf("upsert points [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// HealthCheck verifies Qdrant availability.
func (r *Repo) HealthCheck(ctx context.Context) error {
	if _, err := r.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check: %w", err)
	}
	return nil
}

func pointID(k clause.Key) *qdrant.PointId {
	id := uuid.NewSHA1(uuid.NameSpaceDNS, []byte(k.String()))
	return qdrant.NewIDUUID(id.String())
}

func payloadFromClause(c *clause.Clause) map[string]*qdrant.Value {
	payload := map[string]*qdrant.Value{
		payloadContractID: qdrant.NewValueString(c.ContractID),
		payloadClauseID:   qdrant.NewValueString(c.ClauseID),
		payloadHeading:    qdrant.NewValueString(c.Heading),
		payloadText:       qdrant.NewValueString(c.Text),
		payloadLang:       qdrant.NewValueString(c.Lang),
	}
	if c.Page != nil {
		payload[payloadPage] = qdrant.NewValueInt(int64(*c.Page))
	}
	if c.LineStart != nil {
		payload[payloadLineStart] = qdrant.NewValueInt(int64(*c.LineStart))
	}
	if c.LineEnd != nil {
		payload[payloadLineEnd] = qdrant.NewValueInt(int64(*c.LineEnd))
	}
	return payload
}

func hitFromPayload(payload map[string]*qdrant.Value, score float64) *clause.Hit {
	hit := &clause.Hit{
		ContractID:  payload[payloadContractID].GetStringValue(),
		ClauseID:    payload[payloadClauseID].GetStringValue(),
		Heading:     payload[payloadHeading].GetStringValue(),
		TextSnippet: clause.Snippet(payload[payloadText].GetStringValue()),
		Lang:        payload[payloadLang].GetStringValue(),
		Score:       score,
	}
	if hit.Lang == "" {
		hit.Lang = "en"
	}
	hit.Page = intFromPayload(payload, payloadPage)
	hit.LineRange = [2]*int{
		intFromPayload(payload, payloadLineStart),
		intFromPayload(payload, payloadLineEnd),
	}
	return hit
}

func intFromPayload(payload map[string]*qdrant.Value, key string) *int {
	v, ok := payload[key]
	if !ok {
		return nil
	}
	n := int(v.GetIntegerValue())
	return &n
}
