package knowledge

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/assistant/internal/core/error"
)

const testDims = 64

// bagOfWords is a deterministic embedding: hashed word counts plus a bias
// dimension so no vector is zero.
func bagOfWords(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, testDims+1)
	v[testDims] = 0.1
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%testDims]++
	}
	return v, nil
}

func writeArticle(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func indexedCollection(t *testing.T) *chromem.Collection {
	t.Helper()
	dir := t.TempDir()
	writeArticle(t, dir, "rrsp-basics.md", "# RRSP basics\n\nRRSP contributions reduce your taxable income. Your RRSP deduction limit is on your notice of assessment.")
	writeArticle(t, dir, "accounts/tfsa.md", "# TFSA rules\n\nTFSA withdrawals are tax free and contribution room is restored the next year.")
	writeArticle(t, dir, "notes/ignored.json", `{"not":"indexed"}`)
	writeArticle(t, dir, ".hidden/secret.md", "# Hidden\n\nshould not be indexed")

	collection, err := NewCollection("test", bagOfWords)
	require.NoError(t, err)

	n, err := NewIndexer(collection, 800).IndexDir(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	return collection
}

func TestIndexDir_MissingDirectory(t *testing.T) {
	collection, err := NewCollection("empty", bagOfWords)
	require.NoError(t, err)

	n, err := NewIndexer(collection, 0).IndexDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, collection.Count())
}

func TestChromemRetriever_Ranks(t *testing.T) {
	r := NewChromemRetriever(indexedCollection(t), 5)

	docs, err := r.Retrieve(context.Background(), "how do RRSP contributions reduce taxable income")
	require.NoError(t, err)
	require.Len(t, docs, 2, "top-k is clamped to the collection size")

	assert.Equal(t, "RRSP basics", docs[0].MetaData[MetaTitle])
	assert.Equal(t, "rrsp-basics.md", docs[0].MetaData[MetaSource])
	assert.Greater(t, docs[0].Score(), docs[1].Score())
	assert.Equal(t, "accounts/tfsa.md", docs[1].MetaData[MetaSource])
}

func TestChromemRetriever_Options(t *testing.T) {
	r := NewChromemRetriever(indexedCollection(t), 5)

	docs, err := r.Retrieve(context.Background(), "TFSA withdrawals", retriever.WithTopK(1))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "TFSA rules", docs[0].MetaData[MetaTitle])

	docs, err = r.Retrieve(context.Background(), "TFSA withdrawals", retriever.WithScoreThreshold(1.01))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestChromemRetriever_EmptyCollection(t *testing.T) {
	collection, err := NewCollection("empty", bagOfWords)
	require.NoError(t, err)

	docs, err := NewChromemRetriever(collection, 3).Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestContextRetriever(t *testing.T) {
	c := NewContextRetriever(NewChromemRetriever(indexedCollection(t), 5))

	fragments, err := c.Retrieve(context.Background(), "RRSP deduction limit", []model.Turn{
		{Role: model.RoleUser, Content: "I contribute to an RRSP"},
		{Role: model.RoleAssistant, Content: "TFSA TFSA TFSA"},
	}, 1)
	require.NoError(t, err)
	require.Len(t, fragments, 1)

	f := fragments[0]
	assert.Equal(t, "RRSP basics", f.SourceTitle)
	assert.Equal(t, "rrsp-basics.md", f.SourceLocator)
	assert.Equal(t, "article", f.SourceKind)
	assert.Contains(t, f.Text, "notice of assessment")
	assert.Greater(t, f.Score, 0.0)
}

type failingRetriever struct{}

func (failingRetriever) Retrieve(context.Context, string, ...retriever.Option) ([]*schema.Document, error) {
	return nil, errors.New("index offline")
}

func TestContextRetriever_Error(t *testing.T) {
	_, err := NewContextRetriever(failingRetriever{}).Retrieve(context.Background(), "q", nil, 5)
	require.Error(t, err)
	assert.Equal(t, errx.KindRetrievalUnavailable, errx.KindOf(err))
}

func TestSearchText(t *testing.T) {
	got := searchText("q", []model.Turn{
		{Role: model.RoleUser, Content: " first "},
		{Role: model.RoleAssistant, Content: "answer"},
		{Role: model.RoleUser, Content: "second"},
	})
	assert.Equal(t, "q\nfirst\nsecond", got)
}

func TestChunkText(t *testing.T) {
	text := "para one is here.\n\npara two is here.\n\n" + strings.Repeat("word ", 30)

	chunks, err := ChunkText(text, 40)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 40, c)
	}
	assert.Equal(t, "para one is here.\n\npara two is here.", chunks[0])

	chunks, err = ChunkText("  \n\n ", 40)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkText_Overlaps(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = fmt.Sprintf("alpha%02d", i)
	}

	chunks, err := ChunkText(strings.Join(words, " "), 100)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		cur := strings.Fields(chunks[i])
		assert.Equal(t, prev[len(prev)-1], cur[0], "chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestChunkText_PrefersHeadings(t *testing.T) {
	text := "Intro line about deductions.\n## Medical expenses\nClaim eligible medical costs.\n## Moving expenses\nClaim moving costs."

	chunks, err := ChunkText(text, 60)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "Intro line about deductions.", chunks[0])
	assert.Contains(t, chunks[1], "Claim eligible medical costs.")
	assert.NotContains(t, chunks[1], "moving")
}

func TestIndexer_DocumentsTitle(t *testing.T) {
	collection, err := NewCollection("docs", bagOfWords)
	require.NoError(t, err)
	ix := NewIndexer(collection, 800)

	docs, err := ix.Documents("guides/home-office_expenses.md", "You can deduct part of your rent.")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "home office expenses", docs[0].Metadata[MetaTitle])
	assert.Equal(t, "guides/home-office_expenses.md#0", docs[0].ID)

	docs, err = ix.Documents("a.md", "\n# Moving expenses\n\nEligible if you moved 40 km closer.")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Moving expenses", docs[0].Metadata[MetaTitle])
	assert.Equal(t, "Eligible if you moved 40 km closer.", docs[0].Content)
}

func TestNewEmbeddingFunc(t *testing.T) {
	f, err := NewEmbeddingFunc(model.KnowledgeConfig{EmbeddingProvider: "ollama", EmbeddingModel: "nomic-embed-text"})
	assert.NoError(t, err)
	assert.NotNil(t, f)

	_, err = NewEmbeddingFunc(model.KnowledgeConfig{EmbeddingProvider: "openai"})
	assert.Error(t, err)

	_, err = NewEmbeddingFunc(model.KnowledgeConfig{EmbeddingProvider: "cohere"})
	assert.Error(t, err)
}
