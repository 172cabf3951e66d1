package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event is one emitted command.
type Event struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Category  string    `json:"category"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository records and queries emitted commands.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts e, assigning an ID and timestamp when they are unset.
func (r *EventRepository) Record(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (id, command, category, delivered, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Command, e.Category, e.Delivered, e.CreatedAt,
	)
	return err
}

// List returns up to limit events, newest first. A limit of zero or less
// returns every event.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, command, category, delivered, created_at
		 FROM events ORDER BY rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e := &Event{}
		var delivered int
		if err := rows.Scan(&e.ID, &e.Command, &e.Category, &delivered, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Delivered = delivered != 0
		events = append(events, e)
	}

	return events, rows.Err()
}

// CountByCommand returns how many times each command was emitted.
func (r *EventRepository) CountByCommand() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT command, COUNT(*) FROM events GROUP BY command`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var command string
		var n int
		if err := rows.Scan(&command, &n); err != nil {
			return nil, err
		}
		counts[command] = n
	}

	return counts, rows.Err()
}

// Clear deletes every event and returns how many were removed.
func (r *EventRepository) Clear() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM events`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
