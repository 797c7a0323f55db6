package repositories

import (
	"context"
	"log/slog"

	"github.com/SaurabhKalal/rag-chatbot/internal/db"
	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
	"github.com/SaurabhKalal/rag-chatbot/internal/models"
)

// ConversationRepository persists the per-session chat histories that are fed
// back into the language-model prompts.
type ConversationRepository struct {
	dbs    *db.Database
	logger *slog.Logger
}

func NewConversationRepository(dbs *db.Database, logger *slog.Logger) *ConversationRepository {
	return &ConversationRepository{
		dbs:    dbs,
		logger: logger.With("source", "ConversationRepository"),
	}
}

// Append stores one message at the end of the history for the given session and kind.
func (r *ConversationRepository) Append(
	ctx context.Context,
	sessionID string,
	kind models.Kind,
	role models.Role,
	content string,
) error {
	stmt := `INSERT INTO chat_messages (session_id, kind, role, content) VALUES (?, ?, ?, ?)`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, sessionID, kind, role, content); err != nil {
		return errors.Wrap(err, "insert chat message",
			slog.String("session_id", sessionID), slog.String("kind", string(kind)))
	}
	return nil
}

// Recent returns the last limit messages for the session and kind in chronological order.
func (r *ConversationRepository) Recent(
	ctx context.Context,
	sessionID string,
	kind models.Kind,
	limit int,
) ([]models.Message, error) {
	stmt := `SELECT id, session_id, kind, role, content
	FROM (SELECT id, session_id, kind, role, content
	      FROM chat_messages
	      WHERE session_id = ? AND kind = ?
	      ORDER BY id DESC
	      LIMIT ?)
	ORDER BY id`
	var messages []models.Message
	if err := r.dbs.ReadOnly.SelectContext(ctx, &messages, stmt, sessionID, kind, limit); err != nil {
		return nil, errors.Wrap(err, "query chat messages",
			slog.String("session_id", sessionID), slog.String("kind", string(kind)))
	}
	return messages, nil
}
