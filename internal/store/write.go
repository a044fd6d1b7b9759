package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PutElement inserts or replaces an element by id.
func (s *Store) PutElement(ctx context.Context, e Element) error {
	if err := putElement(ctx, s.db, e); err != nil {
		return fmt.Errorf("put element %q: %w", e.ID, err)
	}
	return nil
}

// PutElements stores elements in a single transaction. Either all elements
// are stored or none are.
func (s *Store) PutElements(ctx context.Context, elements []Element) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range elements {
		if err := putElement(ctx, tx, e); err != nil {
			return fmt.Errorf("put element %q: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putElement(ctx context.Context, db execer, e Element) error {
	if e.ID == "" {
		return fmt.Errorf("element id is empty")
	}
	if err := e.Valid.Validate(); err != nil {
		return fmt.Errorf("valid time: %w", err)
	}
	if err := e.Tx.Validate(); err != nil {
		return fmt.Errorf("transaction time: %w", err)
	}

	props, err := marshalProperties(e.Properties)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO elements
		(id, label, val_from, val_to, tx_from, tx_to, properties)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			val_from = excluded.val_from,
			val_to = excluded.val_to,
			tx_from = excluded.tx_from,
			tx_to = excluded.tx_to,
			properties = excluded.properties
	`,
		e.ID,
		e.Label,
		e.Valid.From,
		e.Valid.To,
		e.Tx.From,
		e.Tx.To,
		props,
	)
	return err
}
