package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Binding routes a command to a plugin action.
type Binding struct {
	ID         string          `json:"id"`
	Command    string          `json:"command"`
	PluginName string          `json:"plugin"`
	ActionName string          `json:"action"`
	Config     json.RawMessage `json:"config,omitempty"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, command, plugin_name, action_name, config, enabled, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (*Binding, error) {
	b := &Binding{}
	var config string
	var enabled int
	if err := row.Scan(&b.ID, &b.Command, &b.PluginName, &b.ActionName, &config, &enabled, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

// Upsert creates the binding for b.Command or replaces the existing one.
// On return b carries the stored ID and timestamps.
func (r *BindingRepository) Upsert(b *Binding) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	config := b.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	now := time.Now()

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(command) DO UPDATE SET
			plugin_name = excluded.plugin_name,
			action_name = excluded.action_name,
			config = excluded.config,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`,
		b.ID, b.Command, b.PluginName, b.ActionName, string(config), b.Enabled, now, now,
	)
	if err != nil {
		return err
	}

	stored, err := r.Get(b.Command)
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

// Get returns the binding for command. It returns nil, nil when the command
// is unbound.
func (r *BindingRepository) Get(command string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(
		`SELECT `+bindingColumns+` FROM bindings WHERE command = ?`, command,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// List returns every binding ordered by command.
func (r *BindingRepository) List() ([]*Binding, error) {
	rows, err := r.db.Query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY command`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bindings := []*Binding{}
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	return bindings, rows.Err()
}

// Delete removes the binding for command.
func (r *BindingRepository) Delete(command string) error {
	res, err := r.db.Exec(`DELETE FROM bindings WHERE command = ?`, command)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}
