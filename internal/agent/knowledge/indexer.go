package knowledge

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/textsplitter"

	logx "github.com/Chative-core-poc-v1/assistant/pkg/logger"
)

const DefaultChunkSize = 800

var markdownSeparators = []string{
	"\n# ", "\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### ",
	"\n\n", "\n", " ", "",
}

// Indexer splits markdown and text articles into chunks and adds them to a collection.
type Indexer struct {
	collection *chromem.Collection
	chunkSize  int
}

func NewIndexer(collection *chromem.Collection, chunkSize int) *Indexer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Indexer{collection: collection, chunkSize: chunkSize}
}

// IndexDir indexes every .md and .txt file under dir and returns the number
// of chunks added. A missing directory leaves the collection empty.
func (ix *Indexer) IndexDir(ctx context.Context, dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logx.Warn().Str("dir", dir).Msg("knowledge directory not found, knowledge base is empty")
		return 0, nil
	}

	var docs []chromem.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".markdown" && ext != ".txt" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logx.Warn().Err(err).Str("path", path).Msg("failed to read article")
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = d.Name()
		}
		articleDocs, err := ix.Documents(filepath.ToSlash(rel), string(content))
		if err != nil {
			logx.Warn().Err(err).Str("path", path).Msg("failed to split article")
			return nil
		}
		docs = append(docs, articleDocs...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk knowledge directory: %w", err)
	}
	if len(docs) == 0 {
		logx.Warn().Str("dir", dir).Msg("no articles found to index")
		return 0, nil
	}

	if err := ix.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return 0, fmt.Errorf("failed to add documents: %w", err)
	}
	logx.Info().Int("chunks", len(docs)).Str("dir", dir).Msg("knowledge base indexed")
	return len(docs), nil
}

// Documents turns one article into chunk documents.
func (ix *Indexer) Documents(source, content string) ([]chromem.Document, error) {
	title, body := splitTitle(source, content)
	chunks, err := ChunkText(body, ix.chunkSize)
	if err != nil {
		return nil, err
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:      source + "#" + strconv.Itoa(i),
			Content: chunk,
			Metadata: map[string]string{
				MetaTitle:  title,
				MetaSource: source,
				MetaKind:   "article",
				MetaChunk:  strconv.Itoa(i),
			},
		})
	}
	return docs, nil
}

// splitTitle takes the first level-one heading as the title, falling back
// to the file name.
func splitTitle(source, content string) (string, string) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			return title, strings.Join(lines[i+1:], "\n")
		}
		break
	}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	title := strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(base))
	return title, strings.Join(lines, "\n")
}

// ChunkText splits text into chunks of at most size runes, preferring
// heading, paragraph and line boundaries. Consecutive chunks overlap by a
// tenth of size.
func ChunkText(text string, size int) ([]string, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(size/10),
		textsplitter.WithSeparators(markdownSeparators),
	)
	chunks, err := splitter.SplitText(strings.ReplaceAll(text, "\r\n", "\n"))
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out, nil
}
