package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pgLogPrefix = "journal:pg"

// PGJournal is a Journal backed by Postgres.
type PGJournal struct {
	pool *pgxpool.Pool
}

// NewPGJournal creates a journal writing to the given pool.
func NewPGJournal(pool *pgxpool.Pool) *PGJournal {
	return &PGJournal{pool: pool}
}

// Record inserts one dispatch row.
func (p *PGJournal) Record(ctx context.Context, rec Record) error {
	slog.Debug(fmt.Sprintf("%s - Record id=%s command=%s", pgLogPrefix, rec.ID, rec.Command))

	_, err := p.pool.Exec(ctx,
		`INSERT INTO bridge_commands (id, command, payload, status, tick, duration_us, dispatched_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Command, rec.Payload, rec.Status, int64(rec.Tick),
		rec.Duration.Microseconds(), rec.At)
	if err != nil {
		return fmt.Errorf("%s - failed to insert record: %w", pgLogPrefix, err)
	}
	return nil
}

// Tail returns up to limit most recent rows, newest first.
func (p *PGJournal) Tail(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultTailLimit
	}

	rows, err := p.pool.Query(ctx,
		`SELECT id, command, payload, status, tick, duration_us, dispatched_at
		 FROM bridge_commands
		 ORDER BY dispatched_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to query records: %w", pgLogPrefix, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var tick, durationUS int64
		if err := rows.Scan(&rec.ID, &rec.Command, &rec.Payload, &rec.Status, &tick, &durationUS, &rec.At); err != nil {
			return nil, fmt.Errorf("%s - failed to scan record: %w", pgLogPrefix, err)
		}
		rec.Tick = uint64(tick)
		rec.Duration = time.Duration(durationUS) * time.Microsecond
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s - row iteration failed: %w", pgLogPrefix, err)
	}
	return out, nil
}
