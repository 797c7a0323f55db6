package knowledge

import (
	"context"
	"database/sql"
	"encoding/binary"
	"log/slog"
	"math"
	"sort"

	"github.com/SaurabhKalal/rag-chatbot/internal/db"
	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
)

// Chunk is one indexed piece of content with its embedding vector.
type Chunk struct {
	ID        string
	Namespace string
	Content   string
	Source    string
	Embedding []float32
}

// Scored is a chunk with its cosine similarity to a query.
type Scored struct {
	Chunk
	Score float64
}

// NamespaceStats reports how many chunks a namespace holds.
type NamespaceStats struct {
	Namespace  string `db:"namespace"`
	ChunkCount int    `db:"chunk_count"`
}

// Store persists chunks and answers similarity queries. Namespaces isolate
// one session's knowledge base from another's.
type Store struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewStore(dbs *db.Database, logger *slog.Logger) *Store {
	return &Store{
		dbs:    dbs,
		logger: logger.With("source", "knowledge.Store"),
	}
}

// Add inserts the chunks in one transaction.
func (s *Store) Add(ctx context.Context, chunks []Chunk) error {
	tx, err := s.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt := `INSERT INTO knowledge_chunks (id, namespace, content, source, embedding) VALUES (?, ?, ?, ?, ?)`
	for _, chunk := range chunks {
		if _, err = tx.ExecContext(ctx, stmt,
			chunk.ID, chunk.Namespace, chunk.Content, chunk.Source, encodeEmbedding(chunk.Embedding),
		); err != nil {
			return errors.Wrap(err, "insert chunk", slog.String("namespace", chunk.Namespace))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

// Count returns the number of chunks in a namespace.
func (s *Store) Count(ctx context.Context, namespace string) (int, error) {
	var count int
	stmt := `SELECT COUNT(*) FROM knowledge_chunks WHERE namespace = ?`
	if err := s.dbs.ReadOnly.GetContext(ctx, &count, stmt, namespace); err != nil {
		return 0, errors.Wrap(err, "count chunks", slog.String("namespace", namespace))
	}
	return count, nil
}

// TotalCount returns the number of chunks across all namespaces.
func (s *Store) TotalCount(ctx context.Context) (int, error) {
	var count int
	if err := s.dbs.ReadOnly.GetContext(ctx, &count, `SELECT COUNT(*) FROM knowledge_chunks`); err != nil {
		return 0, errors.Wrap(err, "count all chunks")
	}
	return count, nil
}

// Namespaces lists all namespaces with their chunk counts.
func (s *Store) Namespaces(ctx context.Context) ([]NamespaceStats, error) {
	var stats []NamespaceStats
	stmt := `SELECT namespace, COUNT(*) AS chunk_count FROM knowledge_chunks GROUP BY namespace`
	if err := s.dbs.ReadOnly.SelectContext(ctx, &stats, stmt); err != nil {
		return nil, errors.Wrap(err, "list namespaces")
	}
	return stats, nil
}

// Search returns the topK most similar chunks within one namespace.
func (s *Store) Search(ctx context.Context, namespace string, query []float32, topK int) ([]Scored, error) {
	return s.search(ctx, query, topK,
		`SELECT id, namespace, content, source, embedding FROM knowledge_chunks WHERE namespace = ?`, namespace)
}

// SearchAll returns the topK most similar chunks across every namespace.
func (s *Store) SearchAll(ctx context.Context, query []float32, topK int) ([]Scored, error) {
	return s.search(ctx, query, topK,
		`SELECT id, namespace, content, source, embedding FROM knowledge_chunks`)
}

func (s *Store) search(ctx context.Context, query []float32, topK int, stmt string, args ...any) ([]Scored, error) {
	rows, err := s.dbs.ReadOnly.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query chunks")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Error("could not close rows", errors.SlogError(closeErr))
		}
	}()

	var scored []Scored
	for rows.Next() {
		var (
			chunk Chunk
			blob  []byte
		)
		if err = rows.Scan(&chunk.ID, &chunk.Namespace, &chunk.Content, &chunk.Source, &blob); err != nil {
			return nil, errors.Wrap(err, "scan chunk")
		}
		chunk.Embedding = decodeEmbedding(blob)
		scored = append(scored, Scored{Chunk: chunk, Score: cosine(query, chunk.Embedding)})
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// IngestionStatus records the result of the latest /process run per session.
type IngestionStatus struct {
	Status string `db:"status"`
	Detail string `db:"detail"`
}

// SetIngestion upserts the latest ingestion status for a session.
func (s *Store) SetIngestion(ctx context.Context, sessionID, status, detail string) error {
	stmt := `INSERT INTO ingestions (session_id, status, detail, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT (session_id) DO UPDATE SET status = excluded.status, detail = excluded.detail, updated_at = excluded.updated_at`
	if _, err := s.dbs.ReadWrite.ExecContext(ctx, stmt, sessionID, status, detail); err != nil {
		return errors.Wrap(err, "upsert ingestion status", slog.String("session_id", sessionID))
	}
	return nil
}

// Ingestion returns the latest ingestion status for a session, if any.
func (s *Store) Ingestion(ctx context.Context, sessionID string) (IngestionStatus, bool, error) {
	var status IngestionStatus
	stmt := `SELECT status, detail FROM ingestions WHERE session_id = ?`
	err := s.dbs.ReadOnly.GetContext(ctx, &status, stmt, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return IngestionStatus{}, false, nil
	}
	if err != nil {
		return IngestionStatus{}, false, errors.Wrap(err, "query ingestion status", slog.String("session_id", sessionID))
	}
	return status, true, nil
}

func encodeEmbedding(embedding []float32) []byte {
	blob := make([]byte, 4*len(embedding))
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(blob[4*i:], math.Float32bits(v))
	}
	return blob
}

func decodeEmbedding(blob []byte) []float32 {
	embedding := make([]float32, len(blob)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return embedding
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
