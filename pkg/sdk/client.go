package clausehub

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/clausehub/clausehub/internal/db/redis"
	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/domain/clause"
	"github.com/clausehub/clausehub/internal/domain/search/request"
	lexicalrepo "github.com/clausehub/clausehub/internal/repository/lexical"
	vectorrepo "github.com/clausehub/clausehub/internal/repository/vector"
	openaiTransport "github.com/clausehub/clausehub/internal/transport/openai"
	"github.com/clausehub/clausehub/internal/transport/rerank"
	askuc "github.com/clausehub/clausehub/internal/usecase/ask"
	healthuc "github.com/clausehub/clausehub/internal/usecase/health"
	ingestuc "github.com/clausehub/clausehub/internal/usecase/ingest"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for test substitution.
type askUseCase interface {
	Ask(ctx context.Context, req *request.Request) (*askuc.Response, error)
}

type ingestUseCase interface {
	Ingest(ctx context.Context, clauses []clause.Clause) error
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the clausehub SDK entry point.
type Client struct {
	store        *dbRedis.Store
	vectors      *vectorrepo.Repo
	askSvc       askUseCase
	ingestSvc    ingestUseCase
	healthSvc    healthUseCase
	defaultAlpha float64
	maxTopK      int
	obs          *observer
}

// New creates a clausehub Client and connects to both backends.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:        "clausehub:",
		qdrantPort:       6334,
		qdrantCollection: "contracts",
		dimensions:       1536,
		defaultAlpha:     0.5,
		maxTopK:          100,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.redisAddrs) == 0 {
		return nil, errors.New("clausehub: redis address required (use WithRedis)")
	}
	if cfg.qdrantHost == "" {
		return nil, errors.New("clausehub: qdrant host required (use WithQdrant)")
	}
	if cfg.embedder == nil && cfg.openaiAPIKey == "" {
		return nil, errors.New("clausehub: embedder required (use WithEmbedder or WithOpenAIEmbedder)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.redisAddrs,
		Username: cfg.redisUsername,
		Password: cfg.redisPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("clausehub: create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("clausehub: redis not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return wireClient(store, cfg, obs)
}

func wireClient(store *dbRedis.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	var domEmb domain.Embedder
	if cfg.embedder != nil {
		domEmb = wrapEmbedder(cfg.embedder)
	} else {
		domEmb = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
			APIKey:     cfg.openaiAPIKey,
			BaseURL:    cfg.openaiBaseURL,
			Model:      cfg.openaiModel,
			Dimensions: cfg.dimensions,
			Provider:   "openai",
		})
	}

	lexRepo := lexicalrepo.New(store, cfg.keyPrefix)

	vecRepo, err := vectorrepo.New(vectorrepo.Config{
		Host:       cfg.qdrantHost,
		Port:       cfg.qdrantPort,
		APIKey:     cfg.qdrantAPIKey,
		UseTLS:     cfg.qdrantTLS,
		Collection: cfg.qdrantCollection,
		Dimensions: cfg.dimensions,
	}, domEmb)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("clausehub: create vector repository: %w", err)
	}

	askSvc := askuc.New(lexRepo, vecRepo)
	if cfg.uniformAsZero {
		askSvc = askSvc.WithUniformPolicy(askuc.UniformAsZero)
	}
	var rerankChecker healthuc.Checker
	if cfg.rerankBaseURL != "" {
		oracle := rerank.NewClient(&rerank.Config{
			BaseURL: cfg.rerankBaseURL,
			Model:   cfg.rerankModel,
		})
		askSvc = askSvc.WithOracle(oracle)
		rerankChecker = oracle
	}
	if cfg.summaryModel != "" {
		askSvc = askSvc.WithSummarizer(openaiTransport.NewSummarizer(&openaiTransport.SummarizerConfig{
			APIKey:  cfg.summaryAPIKey,
			BaseURL: cfg.summaryBaseURL,
			Model:   cfg.summaryModel,
		}))
	}

	var embChecker healthuc.Checker
	if hc, ok := domEmb.(domain.HealthChecker); ok {
		embChecker = hc
	}

	return &Client{
		store:        store,
		vectors:      vecRepo,
		askSvc:       askSvc,
		ingestSvc:    ingestuc.New(lexRepo, vecRepo),
		healthSvc:    healthuc.New(store, vecRepo, embChecker, rerankChecker),
		defaultAlpha: cfg.defaultAlpha,
		maxTopK:      cfg.maxTopK,
		obs:          obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.vectors != nil {
		_ = c.vectors.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks Redis connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ask runs one hybrid retrieval pass.
func (c *Client) Ask(ctx context.Context, req AskRequest) (res *AskResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	alpha := c.defaultAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	topK := req.TopK
	if topK == 0 {
		topK = request.DefaultTopK
	}

	domReq, err := request.New(req.Query, topK, alpha, req.Rerank, req.Summarize, c.maxTopK)
	if err != nil {
		return nil, err
	}

	resp, err := c.askSvc.Ask(ctx, &domReq)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, len(resp.Results))
	for i, h := range resp.Results {
		hits[i] = hitFromDomain(h)
	}
	return &AskResult{
		Results:  hits,
		Reranked: resp.Reranked,
		Summary:  resp.Summary,
	}, nil
}

// Ingest validates and indexes a batch of clauses into both backends.
func (c *Client) Ingest(ctx context.Context, clauses []Clause) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	batch := make([]clause.Clause, len(clauses))
	for i, cl := range clauses {
		batch[i] = clauseToDomain(cl)
	}
	return c.ingestSvc.Ingest(ctx, batch)
}

// wrapEmbedder adapts the public Embedder to the internal contract,
// preserving batch capability when the inner embedder has it.
func wrapEmbedder(e Embedder) domain.Embedder {
	if be, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter{inner: e}, be}
	}
	return &embedderAdapter{inner: e}
}

type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

type batchEmbedderAdapter struct {
	embedderAdapter
	batch BatchEmbedder
}

func (a *batchEmbedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
