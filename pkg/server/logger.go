package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of *pgxpool.Pool the log handler writes through.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// DBLogHandler is a slog.Handler that stores records in search_logs,
// optionally forwarding them to another handler for console output.
type DBLogHandler struct {
	DB       Execer
	SearchID uuid.UUID

	next  slog.Handler
	attrs []groupedAttr
	group string
}

// groupedAttr remembers the group that was open when the attr was added.
type groupedAttr struct {
	prefix string
	attr   slog.Attr
}

func NewDBLogHandler(db Execer, searchID uuid.UUID, next slog.Handler) *DBLogHandler {
	return &DBLogHandler{
		DB:       db,
		SearchID: searchID,
		next:     next,
	}
}

func (h *DBLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true // every level is persisted
}

func (h *DBLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		_ = h.next.Handle(ctx, r.Clone())
	}

	attrs := make(map[string]interface{})
	for _, ga := range h.attrs {
		addAttr(attrs, ga.prefix, ga.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(attrs, h.group, a)
		return true
	})

	metaJSON, err := json.Marshal(attrs)
	if err != nil {
		metaJSON = []byte("{}")
	}

	query := `
		INSERT INTO search_logs (search_id, timestamp, level, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`

	// Detached from the request context so a cancelled request still leaves its trail
	_, err = h.DB.Exec(context.WithoutCancel(ctx), query, h.SearchID, r.Time, r.Level.String(), r.Message, metaJSON)
	return err
}

func (h *DBLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]groupedAttr{}, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, groupedAttr{prefix: h.group, attr: a})
	}
	if h.next != nil {
		clone.next = h.next.WithAttrs(attrs)
	}
	return &clone
}

func (h *DBLogHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.group = joinKey(h.group, name)
	if h.next != nil {
		clone.next = h.next.WithGroup(name)
	}
	return &clone
}

// addAttr stores a under its dotted key, flattening group values.
func addAttr(dst map[string]interface{}, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		// an empty key inlines the group's attrs
		if a.Key != "" {
			prefix = joinKey(prefix, a.Key)
		}
		for _, sub := range v.Group() {
			addAttr(dst, prefix, sub)
		}
		return
	}
	if a.Key == "" {
		return
	}
	dst[joinKey(prefix, a.Key)] = attrValue(v)
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// attrValue makes errors and other values JSON friendly.
func attrValue(v slog.Value) interface{} {
	v = v.Resolve()
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return v.Any()
}
