package clausehub

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	redisAddrs    []string
	redisUsername string
	redisPassword string
	keyPrefix     string

	qdrantHost       string
	qdrantPort       int
	qdrantAPIKey     string
	qdrantTLS        bool
	qdrantCollection string

	embedder      Embedder
	openaiAPIKey  string
	openaiBaseURL string
	openaiModel   string
	dimensions    int

	rerankBaseURL string
	rerankModel   string

	summaryAPIKey  string
	summaryBaseURL string
	summaryModel   string

	defaultAlpha  float64
	maxTopK       int
	uniformAsZero bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the BM25 full-text backend connection.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithRedisUsername sets the Redis ACL username.
func WithRedisUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisUsername = username
	})
}

// WithKeyPrefix namespaces all Redis keys and the FT index.
// Default: "clausehub:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithQdrant configures the dense vector backend connection.
func WithQdrant(host string, port int) Option {
	return optionFunc(func(c *clientConfig) {
		c.qdrantHost = host
		c.qdrantPort = port
	})
}

// WithQdrantAPIKey enables Qdrant API-key auth over TLS.
func WithQdrantAPIKey(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.qdrantAPIKey = apiKey
		c.qdrantTLS = true
	})
}

// WithCollection sets the Qdrant collection name. Default: "contracts".
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.qdrantCollection = name
	})
}

// WithEmbedder sets the text embedding provider.
func WithEmbedder(e Embedder, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.dimensions = dimensions
	})
}

// WithOpenAIEmbedder configures an OpenAI-compatible embedding provider.
func WithOpenAIEmbedder(apiKey, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.openaiAPIKey = apiKey
		c.openaiModel = model
		c.dimensions = dimensions
	})
}

// WithOpenAIBaseURL points the embedding provider at a non-default
// OpenAI-compatible endpoint.
func WithOpenAIBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openaiBaseURL = baseURL
	})
}

// WithReranker enables the cross-encoder rerank stage against a
// text-embeddings-inference style /rerank endpoint.
func WithReranker(baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.rerankBaseURL = baseURL
		c.rerankModel = model
	})
}

// WithSummarizer enables result summarization via an OpenAI-compatible
// chat completion endpoint.
func WithSummarizer(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.summaryAPIKey = apiKey
		c.summaryBaseURL = baseURL
		c.summaryModel = model
	})
}

// WithDefaultAlpha sets the lexical weight used when a query does not
// specify one. Default: 0.5.
func WithDefaultAlpha(alpha float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultAlpha = alpha
	})
}

// WithMaxTopK caps the per-query result budget. Default: 100.
func WithMaxTopK(cap int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxTopK = cap
	})
}

// WithUniformAsZero makes a zero-variance backend result set normalize
// to 0.0 instead of the default 1.0.
func WithUniformAsZero() Option {
	return optionFunc(func(c *clientConfig) {
		c.uniformAsZero = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
