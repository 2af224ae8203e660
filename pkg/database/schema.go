package database

import (
	"context"
	"fmt"
)

func (db *PostgresDB) InitSchema(ctx context.Context) error {
	// 1. Search Requests Table
	requestsQuery := `
		CREATE TABLE IF NOT EXISTS search_requests (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			query TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'running',
			source_count INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := db.Pool.Exec(ctx, requestsQuery); err != nil {
		return fmt.Errorf("failed to create search_requests table: %w", err)
	}

	// 2. Search Logs Table
	logsQuery := `
		CREATE TABLE IF NOT EXISTS search_logs (
			id SERIAL PRIMARY KEY,
			search_id UUID NOT NULL REFERENCES search_requests(id) ON DELETE CASCADE,
			timestamp TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata JSONB
		);
	`
	if _, err := db.Pool.Exec(ctx, logsQuery); err != nil {
		return fmt.Errorf("failed to create search_logs table: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_search_logs_search_id ON search_logs(search_id)"); err != nil {
		return fmt.Errorf("failed to create index on search_logs: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_search_requests_created_at ON search_requests(created_at DESC)"); err != nil {
		return fmt.Errorf("failed to create index on search_requests: %w", err)
	}

	return nil
}
