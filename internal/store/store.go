// Package store keeps an append-only history of translation requests and the
// prompts each service produced. It is a log for inspection, not a cache:
// nothing reads it back into the translation path.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"fluxprompt/internal"
	"fluxprompt/internal/params"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_requests (
		id TEXT PRIMARY KEY,
		source_text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS prompt_results (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		service_name TEXT NOT NULL,
		positive_prompt TEXT NOT NULL,
		negative_prompt TEXT,
		num_images INTEGER,
		steps INTEGER,
		cfg REAL,
		latency_ms INTEGER,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (request_id) REFERENCES translation_requests(id)
	);

	CREATE TABLE IF NOT EXISTS final_prompts (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		selected_service TEXT,
		positive_prompt TEXT NOT NULL,
		negative_prompt TEXT,
		num_images INTEGER,
		steps INTEGER,
		cfg REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (request_id) REFERENCES translation_requests(id)
	);

	CREATE INDEX IF NOT EXISTS idx_results_request ON prompt_results(request_id);
	CREATE INDEX IF NOT EXISTS idx_finals_request ON final_prompts(request_id);
	CREATE INDEX IF NOT EXISTS idx_requests_created ON translation_requests(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) SaveRequest(ctx context.Context, req internal.TranslationRequest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_requests (id, source_text, created_at) VALUES (?, ?, ?)`,
		req.ID, normalizeText(req.SourceText), req.Timestamp)
	return err
}

func (s *Store) SaveResult(ctx context.Context, requestID, serviceName string, p params.Prompt, latencyMs int, errMsg string) error {
	id := fmt.Sprintf("%s_%s", requestID, serviceName)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prompt_results (id, request_id, service_name, positive_prompt, negative_prompt, num_images, steps, cfg, latency_ms, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, requestID, serviceName, p.Positive, p.Negative, p.NumImages, p.Steps, p.CFG, latencyMs, errMsg)
	return err
}

func (s *Store) SaveFinalPrompt(ctx context.Context, requestID, selectedService string, p params.Prompt) error {
	id := fmt.Sprintf("%s_final", requestID)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO final_prompts (id, request_id, selected_service, positive_prompt, negative_prompt, num_images, steps, cfg) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, requestID, selectedService, p.Positive, p.Negative, p.NumImages, p.Steps, p.CFG)
	return err
}

// HistoryEntry is one translated request joined with its final prompt.
type HistoryEntry struct {
	RequestID       string
	SourceText      string
	SelectedService string
	Prompt          params.Prompt
	CreatedAt       time.Time
}

// ListHistory returns the most recent requests with their final prompts,
// newest first. limit <= 0 means no limit.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	query := `
		SELECT r.id, r.source_text, f.selected_service, f.positive_prompt, f.negative_prompt, f.num_images, f.steps, f.cfg, r.created_at
		FROM translation_requests r
		JOIN final_prompts f ON f.request_id = r.id
		ORDER BY r.created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.RequestID, &e.SourceText, &e.SelectedService, &e.Prompt.Positive, &e.Prompt.Negative, &e.Prompt.NumImages, &e.Prompt.Steps, &e.Prompt.CFG, &e.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// ServiceAttempt is one per-service row for a request, including failures.
type ServiceAttempt struct {
	ServiceName string
	Prompt      params.Prompt
	LatencyMs   int
	Error       string
}

// ListAttempts returns every service attempt recorded for a request.
func (s *Store) ListAttempts(ctx context.Context, requestID string) ([]ServiceAttempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT service_name, positive_prompt, negative_prompt, num_images, steps, cfg, latency_ms, error FROM prompt_results WHERE request_id = ? ORDER BY service_name`,
		requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ServiceAttempt
	for rows.Next() {
		var a ServiceAttempt
		if err := rows.Scan(&a.ServiceName, &a.Prompt.Positive, &a.Prompt.Negative, &a.Prompt.NumImages, &a.Prompt.Steps, &a.Prompt.CFG, &a.LatencyMs, &a.Error); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// HistoryStats summarises the history log.
type HistoryStats struct {
	TotalRequests  int
	TotalAttempts  int
	FailedAttempts int
}

func (s *Store) Stats(ctx context.Context) (*HistoryStats, error) {
	stats := &HistoryStats{}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM translation_requests`).Scan(&stats.TotalRequests); err != nil {
		return nil, err
	}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0)
		FROM prompt_results`).Scan(&stats.TotalAttempts, &stats.FailedAttempts)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ClearHistory removes all history rows and returns the number of requests
// deleted.
func (s *Store) ClearHistory(ctx context.Context) (int64, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM prompt_results`); err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM final_prompts`); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_requests`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText applies NFC so the same description always stores as the
// same bytes regardless of how the host composed it.
func normalizeText(text string) string {
	return norm.NFC.String(text)
}
