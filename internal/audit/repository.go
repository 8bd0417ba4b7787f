package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OutcomeSuccess marks an execution that returned output. Failed executions
// store their error kind instead.
const OutcomeSuccess = "success"

// timeFormat is fixed-width so that text order matches time order.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Entry is one recorded execution.
type Entry struct {
	ID          string    `json:"id"`
	Device      string    `json:"device"`
	CommandID   string    `json:"command"`
	Rendered    string    `json:"rendered,omitempty"`
	Driver      string    `json:"driver,omitempty"`
	Outcome     string    `json:"outcome"`
	Message     string    `json:"message,omitempty"`
	OutputBytes int       `json:"output_bytes"`
	DurationMS  int64     `json:"duration_ms"`
	StartedAt   time.Time `json:"started_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filter controls which entries List returns.
type Filter struct {
	Device    string // optional
	CommandID string // optional
	Outcome   string // optional: "success" or an error kind
	Limit     int    // default 50, max 200
	Offset    int
}

// ListResult is one page of entries, most recent first.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository stores and queries execution entries.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores entries in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts an entry. ID and CreatedAt are generated when empty.
func (r *SQLiteRepository) Create(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = "exe-" + uuid.NewString()[:8]
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = entry.CreatedAt
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO executions (id, device, command_id, rendered, driver, outcome, message,
		                         output_bytes, duration_ms, started_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Device, entry.CommandID, entry.Rendered, entry.Driver,
		entry.Outcome, entry.Message, entry.OutputBytes, entry.DurationMS,
		entry.StartedAt.UTC().Format(timeFormat),
		entry.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting execution: %w", err)
	}
	return nil
}

// List returns entries matching filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.Device != "" {
		conditions = append(conditions, "device = ?")
		args = append(args, filter.Device)
	}
	if filter.CommandID != "" {
		conditions = append(conditions, "command_id = ?")
		args = append(args, filter.CommandID)
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, filter.Outcome)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM executions " + where //nolint:gosec // WHERE built from parameterised conditions
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting executions: %w", err)
	}

	query := `SELECT id, device, command_id, rendered, driver, outcome, message,
	                 output_bytes, duration_ms, started_at, created_at
	          FROM executions ` + where + ` ORDER BY started_at DESC, id LIMIT ? OFFSET ?` //nolint:gosec // as above
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying executions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var startedAt, createdAt string
		if err := rows.Scan(&e.ID, &e.Device, &e.CommandID, &e.Rendered, &e.Driver,
			&e.Outcome, &e.Message, &e.OutputBytes, &e.DurationMS, &startedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning execution: %w", err)
		}
		if e.StartedAt, err = time.Parse(timeFormat, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at %q: %w", startedAt, err)
		}
		if e.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating executions: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
