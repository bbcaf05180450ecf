package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/leitbox/internal/domain"
	"github.com/conorfennell/leitbox/internal/state"
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// ExportDeck replaces the database contents with a snapshot of d. The
// snapshot is written in one transaction, so readers see either the previous
// export or the new one.
func (db *DB) ExportDeck(ctx context.Context, d *state.DeckState) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin export: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"history", "progress", "cards", "meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('created', ?)`,
		formatTime(d.Created)); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	for pos, id := range d.IDs() {
		card, _ := d.Card(id)
		p, _ := d.Progress(id)

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cards (id, position, question, answer)
			VALUES (?, ?, ?, ?)
		`, card.ID, pos+1, card.Question, card.Answer); err != nil {
			return fmt.Errorf("failed to insert card %s: %w", id, err)
		}

		var lastConfidence sql.NullString
		if p.LastConfidence != nil {
			lastConfidence = sql.NullString{String: p.LastConfidence.String(), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO progress (card_id, box, next_due, last_confidence, review_count)
			VALUES (?, ?, ?, ?, ?)
		`, id, p.Box, formatTime(p.NextDue), lastConfidence, p.ReviewCount); err != nil {
			return fmt.Errorf("failed to insert progress for card %s: %w", id, err)
		}
	}

	for i, h := range d.History {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO history (seq, ts, card_id, prior_box, new_box, confidence)
			VALUES (?, ?, ?, ?, ?, ?)
		`, i+1, formatTime(h.Timestamp), h.CardID, h.PriorBox, h.NewBox, h.Confidence.String()); err != nil {
			return fmt.Errorf("failed to insert history entry %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}

// CardState is one exported card joined with its progress.
type CardState struct {
	ID             string
	Question       string
	Box            int
	NextDue        time.Time
	LastConfidence sql.NullString
	ReviewCount    int
}

// GetCardStates returns every exported card in deck order.
func (db *DB) GetCardStates(ctx context.Context) ([]CardState, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.question, p.box, p.next_due, p.last_confidence, p.review_count
		FROM cards c JOIN progress p ON p.card_id = c.id
		ORDER BY c.position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query card states: %w", err)
	}
	defer rows.Close()

	var cardStates []CardState
	for rows.Next() {
		var cs CardState
		var nextDue string
		if err := rows.Scan(&cs.ID, &cs.Question, &cs.Box, &nextDue, &cs.LastConfidence, &cs.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan card state row: %w", err)
		}
		cs.NextDue, err = time.Parse(time.RFC3339Nano, nextDue)
		if err != nil {
			return nil, fmt.Errorf("failed to parse next_due of card %s: %w", cs.ID, err)
		}
		cardStates = append(cardStates, cs)
	}
	return cardStates, rows.Err()
}

// CountHistory returns the number of exported review log entries.
func (db *DB) CountHistory(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// ConfidenceCounts returns how many reviews were graded with each confidence.
func (db *DB) ConfidenceCounts(ctx context.Context) (map[domain.Confidence]int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT confidence, COUNT(*) FROM history GROUP BY confidence
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query confidence counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Confidence]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan confidence row: %w", err)
		}
		c, err := domain.ParseConfidence(name)
		if err != nil {
			return nil, err
		}
		counts[c] = n
	}
	return counts, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
