package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []execCall
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	return pgconn.CommandTag{}, nil
}

func TestDBLogHandlerPersistsRecord(t *testing.T) {
	db := &fakeExecer{}
	id := uuid.New()
	var console bytes.Buffer

	logger := slog.New(NewDBLogHandler(db, id, slog.NewTextHandler(&console, nil)))
	logger.With("query", "golang").WithGroup("provider").Error("Search error", "error", errors.New("quota"))

	require.Len(t, db.calls, 1)
	call := db.calls[0]
	assert.Contains(t, call.sql, "INSERT INTO search_logs")
	require.Len(t, call.args, 5)
	assert.Equal(t, id, call.args[0])
	assert.Equal(t, "ERROR", call.args[2])
	assert.Equal(t, "Search error", call.args[3])

	var meta map[string]any
	require.NoError(t, json.Unmarshal(call.args[4].([]byte), &meta))
	assert.Equal(t, "golang", meta["query"])
	assert.Equal(t, "quota", meta["provider.error"])

	assert.Contains(t, console.String(), "Search error")
}

func TestDBLogHandlerGroupsAndNestedValues(t *testing.T) {
	db := &fakeExecer{}

	logger := slog.New(NewDBLogHandler(db, uuid.New(), nil))
	logger.WithGroup("search").With("attempt", 1).WithGroup("provider").Info("Search error",
		"status", 429,
		"quota", slog.GroupValue(slog.String("kind", "requests"), slog.Group("limit", slog.Int("per_minute", 60))),
		slog.Group("", slog.String("inline", "yes")),
	)

	require.Len(t, db.calls, 1)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(db.calls[0].args[4].([]byte), &meta))
	assert.Equal(t, map[string]any{
		"search.attempt":                         float64(1),
		"search.provider.status":                 float64(429),
		"search.provider.quota.kind":             "requests",
		"search.provider.quota.limit.per_minute": float64(60),
		"search.provider.inline":                 "yes",
	}, meta)
}

func TestDBLogHandlerPersistsBelowConsoleLevel(t *testing.T) {
	db := &fakeExecer{}
	var console bytes.Buffer
	next := slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn})

	slog.New(NewDBLogHandler(db, uuid.New(), next)).Debug("Search completed")

	assert.Len(t, db.calls, 1)
	assert.Empty(t, console.String())
}

func TestDBLogHandlerWithoutConsole(t *testing.T) {
	db := &fakeExecer{}

	slog.New(NewDBLogHandler(db, uuid.New(), nil)).Info("Starting search")

	assert.Len(t, db.calls, 1)
}
