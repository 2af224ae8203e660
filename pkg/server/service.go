package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mikeboe/devweb/pkg/search"
)

var (
	// ErrHistoryDisabled is returned by history queries when no database is configured.
	ErrHistoryDisabled = errors.New("search history is disabled: DATABASE_URL is not set")
	ErrSearchNotFound  = errors.New("search not found")
)

// DBTX is the part of *pgxpool.Pool the service uses.
type DBTX interface {
	Execer
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Service struct {
	DB           DBTX // nil disables history
	Searcher     *search.GeminiSearcher
	HistoryLimit int
}

func NewService(db DBTX, searcher *search.GeminiSearcher, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Service{
		DB:           db,
		Searcher:     searcher,
		HistoryLimit: historyLimit,
	}
}

type SearchRecord struct {
	ID          uuid.UUID `json:"id"`
	Query       string    `json:"query"`
	Status      string    `json:"status"`
	SourceCount int       `json:"source_count"`
	Error       *string   `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	ID uuid.UUID `json:"id"`
	*search.SearchResult
}

type LogEntry struct {
	ID        int            `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
}

// Search runs one grounded search. With a database the request and its log
// records are stored under the returned id.
func (s *Service) Search(ctx context.Context, query string) (*SearchResponse, error) {
	id := uuid.New()
	logger := slog.Default().With("search_id", id)

	if s.DB != nil {
		_, err := s.DB.Exec(ctx,
			`INSERT INTO search_requests (id, query, status) VALUES ($1, $2, 'running')`,
			id, query)
		if err != nil {
			logger.Error("Failed to record search", "error", err)
		} else {
			logger = slog.New(NewDBLogHandler(s.DB, id, slog.Default().Handler())).With("search_id", id)
		}
	}

	logger.Info("Starting search", "query", query)
	result, err := s.Searcher.WithLogger(logger).PerformSearch(ctx, query)
	if err != nil {
		s.finish(ctx, logger, id, "failed", 0, err.Error())
		return nil, err
	}

	s.finish(ctx, logger, id, "completed", len(result.Sources), "")

	return &SearchResponse{ID: id, SearchResult: result}, nil
}

func (s *Service) finish(ctx context.Context, logger *slog.Logger, id uuid.UUID, status string, sourceCount int, errText string) {
	if s.DB == nil {
		return
	}

	var errCol *string
	if errText != "" {
		errCol = &errText
	}

	_, err := s.DB.Exec(context.WithoutCancel(ctx),
		`UPDATE search_requests SET status = $2, source_count = $3, error = $4, updated_at = NOW() WHERE id = $1`,
		id, status, sourceCount, errCol)
	if err != nil {
		logger.Error("Failed to update search status", "status", status, "error", err)
	}
}

func (s *Service) ListSearches(ctx context.Context) ([]SearchRecord, error) {
	if s.DB == nil {
		return nil, ErrHistoryDisabled
	}

	query := `
		SELECT id, query, status, source_count, error, created_at, updated_at
		FROM search_requests
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.DB.Query(ctx, query, s.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var r SearchRecord
		if err := rows.Scan(&r.ID, &r.Query, &r.Status, &r.SourceCount, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Service) GetSearch(ctx context.Context, id uuid.UUID) (*SearchRecord, error) {
	if s.DB == nil {
		return nil, ErrHistoryDisabled
	}

	query := `
		SELECT id, query, status, source_count, error, created_at, updated_at
		FROM search_requests
		WHERE id = $1
	`
	r := &SearchRecord{}
	err := s.DB.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.Query, &r.Status, &r.SourceCount, &r.Error, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSearchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get search: %w", err)
	}
	return r, nil
}

func (s *Service) GetSearchLogs(ctx context.Context, id uuid.UUID) ([]LogEntry, error) {
	if s.DB == nil {
		return nil, ErrHistoryDisabled
	}

	query := `
		SELECT id, timestamp, level, message, metadata
		FROM search_logs
		WHERE search_id = $1
		ORDER BY id ASC
	`
	rows, err := s.DB.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var l LogEntry
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message, &l.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
