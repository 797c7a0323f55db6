package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
	"github.com/google/uuid"
)

// Document is one unit of raw text headed for the chunk store.
type Document struct {
	Source string
	Text   string
}

// Progress receives human-readable ingestion updates.
type Progress func(detail string)

// Pipeline cleans, chunks, embeds and stores documents for one namespace.
type Pipeline struct {
	embedder     Embedder
	store        *Store
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

func NewPipeline(embedder Embedder, store *Store, chunkSize, chunkOverlap int, logger *slog.Logger) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Pipeline{
		embedder:     embedder,
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger.With("source", "knowledge.Pipeline"),
	}
}

var ErrNothingToIngest = errors.NewSentinel("no usable text in any document")

// Ingest pushes the documents through clean → chunk → embed → store and
// returns the number of chunks written. Progress may be nil.
func (p *Pipeline) Ingest(ctx context.Context, namespace string, docs []Document, progress Progress) (int, error) {
	report := func(detail string) {
		if progress != nil {
			progress(detail)
		}
	}

	var chunks []Chunk
	var texts []string
	for _, doc := range docs {
		cleaned := CleanText(doc.Text)
		if cleaned == "" {
			continue
		}
		parts := Split(cleaned, p.chunkSize, p.chunkOverlap)
		report(fmt.Sprintf("Split %s into %d chunks", doc.Source, len(parts)))
		for _, part := range parts {
			chunks = append(chunks, Chunk{
				ID:        uuid.NewString(),
				Namespace: namespace,
				Content:   part,
				Source:    doc.Source,
			})
			texts = append(texts, part)
		}
	}
	if len(chunks) == 0 {
		return 0, ErrNothingToIngest
	}

	report(fmt.Sprintf("Embedding %d chunks", len(chunks)))
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, errors.Wrap(err, "embed chunks")
	}
	if len(embeddings) != len(chunks) {
		return 0, errors.New("embedding count mismatch",
			slog.Int("chunks", len(chunks)), slog.Int("embeddings", len(embeddings)))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	report("Storing chunks")
	if err := p.store.Add(ctx, chunks); err != nil {
		return 0, errors.Wrap(err, "store chunks")
	}
	p.logger.LogAttrs(ctx, slog.LevelInfo, "ingested documents",
		slog.String("namespace", namespace),
		slog.Int("chunks", len(chunks)))
	return len(chunks), nil
}
