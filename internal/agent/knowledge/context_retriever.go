package knowledge

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/assistant/internal/core/error"
)

// ContextRetriever turns an enriched query plus recent turns into ranked
// fragments using any eino retriever.
type ContextRetriever struct {
	retriever retriever.Retriever
}

func NewContextRetriever(r retriever.Retriever) *ContextRetriever {
	return &ContextRetriever{retriever: r}
}

// Retrieve searches with the query followed by the recent user turns. The
// caller decides how many turns to pass.
func (c *ContextRetriever) Retrieve(ctx context.Context, query string, history []model.Turn, topK int) ([]model.Fragment, error) {
	docs, err := c.retriever.Retrieve(ctx, searchText(query, history), retriever.WithTopK(topK))
	if err != nil {
		return nil, errx.WrapRetrieval(err)
	}

	fragments := make([]model.Fragment, 0, len(docs))
	for _, d := range docs {
		if d == nil {
			continue
		}
		fragments = append(fragments, toFragment(d))
	}
	return fragments, nil
}

func searchText(query string, history []model.Turn) string {
	parts := []string{query}
	for _, t := range history {
		if t.Role == model.RoleUser {
			parts = append(parts, strings.TrimSpace(t.Content))
		}
	}
	return strings.Join(parts, "\n")
}

func toFragment(d *schema.Document) model.Fragment {
	return model.Fragment{
		Text:          d.Content,
		Score:         d.Score(),
		SourceTitle:   metaString(d.MetaData, MetaTitle),
		SourceLocator: metaString(d.MetaData, MetaSource),
		SourceKind:    metaString(d.MetaData, MetaKind),
	}
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}
