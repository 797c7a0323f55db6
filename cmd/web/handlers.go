package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/SaurabhKalal/rag-chatbot/internal/errors"
	"github.com/SaurabhKalal/rag-chatbot/internal/knowledge"
	"github.com/SaurabhKalal/rag-chatbot/internal/logging"
)

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "RAG API is running",
	})
}

// apiMeta describes the API surface for clients hitting the root path.
func (app *application) apiMeta(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"message": "Legal RAG API",
		"endpoints": map[string]string{
			"/chat_legal":                  "Converse with the legal assistant",
			"/process":                     "Process URL and/or text document and store in vector DB",
			"/process/events/{session_id}": "Stream document processing progress",
			"/query":                       "Query the vector DB with a question (supports admin global access)",
			"/validate-session":            "Validate if a session ID exists and has content",
			"/api/healthy":                 "Health check",
			"/namespaces":                  "Get all available namespaces",
			"/session/{session_id}/status": "Check session status",
		},
		"usage": map[string]string{
			"step1": "Use /process to upload sources (URL and/or text)",
			"step2": "Use /query to ask questions about the processed content",
			"admin": "Admins can query across all namespaces with is_admin=true",
		},
	})
}

type chatRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Answer           string   `json:"answer"`
	SessionID        string   `json:"session_id"`
	RetrievedSources []string `json:"retrieved_sources"`
	ContextCount     *int     `json:"context_count"`
	IsAdminQuery     *bool    `json:"is_admin_query"`
}

const chatUnavailable = "I'm having trouble reaching the legal assistant service. Please try again."

// chatLegal runs one turn of the intake conversation. The session in the
// store is only replaced when the turn succeeds, so a failed turn can be
// retried with the same utterance.
func (app *application) chatLegal(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	sessionID, err := validateSessionID(req.SessionID)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx := logging.WithAttrs(r.Context(), slog.String("sessionID", sessionID))
	sess := app.sessions.GetOrCreate(sessionID)
	next, answer, err := app.machine.Turn(ctx, sessionID, sess, req.Question)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "chat turn failed", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusOK, chatResponse{
			Answer:    chatUnavailable,
			SessionID: sessionID,
		})
		return
	}
	app.sessions.Put(sessionID, next)

	app.writeJSON(w, r, http.StatusOK, chatResponse{
		Answer:    answer,
		SessionID: sessionID,
	})
}

type queryRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
	IsAdmin   bool   `json:"is_admin"`
}

// query answers a question from the knowledge base. Admin queries search
// across all namespaces; regular queries are isolated to their session's
// namespace and must have processed documents first.
func (app *application) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	// Admin uses '*' for global search.
	if req.SessionID != "*" {
		sessionID, err := validateSessionID(req.SessionID)
		if err != nil {
			app.writeJSON(w, r, http.StatusOK, map[string]string{
				"error":      fmt.Sprintf("Invalid session ID: %s", err.Error()),
				"session_id": req.SessionID,
			})
			return
		}
		req.SessionID = sessionID
	}

	ctx := r.Context()
	if !req.IsAdmin {
		count, err := app.knowledgeStore.Count(ctx, req.SessionID)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		if count == 0 {
			app.writeJSON(w, r, http.StatusOK, map[string]string{
				"error": fmt.Sprintf("No vectors found in namespace '%s'. Please process documents first.",
					req.SessionID),
				"session_id": req.SessionID,
				"suggestion": "Use /process endpoint to upload and process documents first",
			})
			return
		}
	}

	result, err := app.answerer.Answer(ctx, req.SessionID, req.Question, req.IsAdmin)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "query failed", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusOK, map[string]string{
			"error":      fmt.Sprintf("Failed to process query: %s", err.Error()),
			"session_id": req.SessionID,
		})
		return
	}

	contextCount := len(result.Sources)
	app.writeJSON(w, r, http.StatusOK, chatResponse{
		Answer:           result.Answer,
		SessionID:        req.SessionID,
		RetrievedSources: result.Sources,
		ContextCount:     &contextCount,
		IsAdminQuery:     &req.IsAdmin,
	})
}

type processRequest struct {
	URL       string `json:"url"`
	Text      string `json:"text"`
	Source    string `json:"source"`
	SessionID string `json:"session_id"`
}

// process ingests a URL and/or a text document into the session's namespace.
// The heavy lifting happens in a background goroutine; progress streams
// through the broker to the events endpoint and the final status is
// persisted for late subscribers.
func (app *application) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	sessionID, err := validateSessionID(req.SessionID)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.URL == "" && req.Text == "" {
		app.clientError(w, r, http.StatusBadRequest,
			"At least one source (URL or document) must be provided")
		return
	}
	if req.URL != "" && !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		app.clientError(w, r, http.StatusBadRequest, "URL must start with http:// or https://")
		return
	}

	if err = app.knowledgeStore.SetIngestion(r.Context(), sessionID, "processing", "Processing started"); err != nil {
		app.serverError(w, r, err)
		return
	}

	progressChannel := make(chan string)
	app.progressBroker.Publish(sessionID, progressChannel)
	go app.ingest(sessionID, req, progressChannel)

	app.writeJSON(w, r, http.StatusAccepted, map[string]string{
		"status":     "Processing started",
		"session_id": sessionID,
	})
}

// ingest runs the scrape → clean → chunk → embed → store pipeline in the
// background. It must not use the request context, which is gone by now.
func (app *application) ingest(sessionID string, req processRequest, progressChannel chan string) {
	ctx := logging.WithAttrs(context.Background(), slog.String("sessionID", sessionID))
	defer func() {
		close(progressChannel)
		app.progressBroker.Unpublish(sessionID)
	}()

	report := func(detail string) {
		select {
		case progressChannel <- detail:
		default:
			// No subscriber listening right now. The final status is
			// persisted, so dropping intermediate events is fine.
		}
	}

	var docs []knowledge.Document
	if req.URL != "" {
		report(fmt.Sprintf("Scraping %s", req.URL))
		page, err := app.scraper.Fetch(ctx, req.URL)
		if err != nil {
			app.failIngestion(ctx, sessionID, errors.Wrap(err, "scrape url"), report)
			return
		}
		docs = append(docs, knowledge.Document{Source: page.URL, Text: page.Text})
	}
	if req.Text != "" {
		source := req.Source
		if source == "" {
			source = "document"
		}
		docs = append(docs, knowledge.Document{Source: source, Text: req.Text})
	}

	count, err := app.pipeline.Ingest(ctx, sessionID, docs, report)
	if err != nil {
		app.failIngestion(ctx, sessionID, err, report)
		return
	}

	detail := fmt.Sprintf("Sources processed and indexed successfully: %d chunks", count)
	report(detail)
	if err = app.knowledgeStore.SetIngestion(ctx, sessionID, "completed", detail); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "persist ingestion status", errors.SlogError(err))
	}
}

func (app *application) failIngestion(ctx context.Context, sessionID string, err error, report func(string)) {
	app.logger.LogAttrs(ctx, slog.LevelError, "ingestion failed", errors.SlogError(err))
	detail := fmt.Sprintf("Processing failed: %s", err.Error())
	report(detail)
	if persistErr := app.knowledgeStore.SetIngestion(ctx, sessionID, "failed", detail); persistErr != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "persist ingestion status", errors.SlogError(persistErr))
	}
}

// processEvents streams ingestion progress as Server-Sent Events. When the
// producer has already finished, the persisted status is sent as a single
// event instead.
func (app *application) processEvents(w http.ResponseWriter, r *http.Request) {
	sessionID, err := validateSessionID(r.PathValue("sessionID"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverError(w, r, errors.New("response writer does not support streaming"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent := func(detail string) {
		_, _ = fmt.Fprintf(w, "data: %s\n\n", detail)
		flusher.Flush()
	}

	// writePersisted falls back to the stored status when no live events are
	// available, so late subscribers still learn how the run ended.
	writePersisted := func() {
		status, found, statusErr := app.knowledgeStore.Ingestion(r.Context(), sessionID)
		if statusErr != nil {
			app.serverError(w, r, statusErr)
			return
		}
		if !found {
			writeEvent("No processing in progress")
			return
		}
		writeEvent(status.Detail)
	}

	progressChannel, ok := <-app.progressBroker.Subscribe(sessionID)
	if !ok {
		// Producer finished or never started.
		writePersisted()
		return
	}

	sentAny := false
	for {
		select {
		case <-r.Context().Done():
			return
		case detail, open := <-progressChannel:
			if !open {
				if !sentAny {
					writePersisted()
				}
				return
			}
			sentAny = true
			writeEvent(detail)
		}
	}
}

type sessionValidationRequest struct {
	SessionID string `json:"session_id"`
}

// validateSession checks whether a session ID is well-formed and has indexed
// content.
func (app *application) validateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionValidationRequest
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sessionID, err := validateSessionID(req.SessionID)
	if err != nil {
		app.writeJSON(w, r, http.StatusOK, map[string]any{
			"valid":      false,
			"error":      err.Error(),
			"session_id": req.SessionID,
		})
		return
	}

	count, err := app.knowledgeStore.Count(r.Context(), sessionID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if count > 0 {
		app.writeJSON(w, r, http.StatusOK, map[string]any{
			"valid":        true,
			"session_id":   sessionID,
			"vector_count": count,
			"message":      fmt.Sprintf("Session found with %d documents", count),
		})
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"valid":      false,
		"session_id": sessionID,
		"error":      "Session not found or has no content",
	})
}

// sessionStatus reports whether a session's namespace has indexed vectors.
func (app *application) sessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID, err := validateSessionID(r.PathValue("sessionID"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	count, err := app.knowledgeStore.Count(r.Context(), sessionID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if count > 0 {
		app.writeJSON(w, r, http.StatusOK, map[string]any{
			"session_id":   sessionID,
			"exists":       true,
			"vector_count": count,
			"status":       "active",
			"valid":        true,
		})
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"session_id":   sessionID,
		"exists":       false,
		"vector_count": 0,
		"status":       "empty",
		"valid":        false,
	})
}

// namespaces lists all namespaces with '0000' and 'default' sorted first.
func (app *application) namespaces(w http.ResponseWriter, r *http.Request) {
	stats, err := app.knowledgeStore.Namespaces(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	total, err := app.knowledgeStore.TotalCount(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	priority := []string{"0000", "default"}
	existing := map[string]bool{}
	for _, ns := range stats {
		existing[ns.Namespace] = true
	}

	var sorted []string
	for _, ns := range priority {
		if existing[ns] {
			sorted = append(sorted, ns)
		}
	}
	var regular []string
	for _, ns := range stats {
		isPriority := ns.Namespace == priority[0] || ns.Namespace == priority[1]
		if !isPriority {
			regular = append(regular, ns.Namespace)
		}
	}
	sort.Strings(regular)
	sorted = append(sorted, regular...)
	if sorted == nil {
		sorted = []string{}
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{
		"namespaces":    sorted,
		"total_count":   len(stats),
		"total_vectors": total,
	})
}
