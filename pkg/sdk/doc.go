// Package clausehub provides an embedded Go client for the clausehub
// hybrid contract-clause retrieval engine, backed by Redis (BM25 full
// text) and Qdrant (dense vectors).
//
//	client, _ := clausehub.New(ctx,
//	    clausehub.WithRedis("localhost:6379", ""),
//	    clausehub.WithQdrant("localhost", 6334),
//	    clausehub.WithOpenAIEmbedder(apiKey, "text-embedding-3-small", 1536),
//	)
//	defer client.Close()
//
//	_ = client.Ingest(ctx, clauses)
//	res, _ := client.Ask(ctx, clausehub.AskRequest{
//	    Query:  "termination notice period",
//	    Rerank: true,
//	})
package clausehub
