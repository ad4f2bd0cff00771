package knowledge

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/philippgille/chromem-go"
)

const DefaultTopK = 5

// ChromemRetriever serves eino retrieval requests from a chromem-go collection.
type ChromemRetriever struct {
	collection *chromem.Collection
	topK       int
}

func NewChromemRetriever(collection *chromem.Collection, topK int) *ChromemRetriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ChromemRetriever{collection: collection, topK: topK}
}

// Retrieve returns up to TopK documents scored by cosine similarity.
// An empty collection yields no documents.
func (r *ChromemRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK := r.topK
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)

	n := topK
	if options.TopK != nil && *options.TopK > 0 {
		n = *options.TopK
	}
	if count := r.collection.Count(); n > count {
		n = count
	}
	if n == 0 {
		return []*schema.Document{}, nil
	}

	results, err := r.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	docs := make([]*schema.Document, 0, len(results))
	for _, res := range results {
		score := float64(res.Similarity)
		if options.ScoreThreshold != nil && score < *options.ScoreThreshold {
			continue
		}
		meta := make(map[string]any, len(res.Metadata))
		for k, v := range res.Metadata {
			meta[k] = v
		}
		doc := &schema.Document{ID: res.ID, Content: res.Content, MetaData: meta}
		docs = append(docs, doc.WithScore(score))
	}
	return docs, nil
}

var _ retriever.Retriever = (*ChromemRetriever)(nil)
