package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const elementColumns = "id, label, val_from, val_to, tx_from, tx_to, properties"

// GetElement returns the element with the given id.
// Returns an error wrapping ErrNotFound if it does not exist.
func (s *Store) GetElement(ctx context.Context, id string) (Element, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+elementColumns+" FROM elements WHERE id = ?", id)

	e, err := scanElement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Element{}, fmt.Errorf("get element %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Element{}, fmt.Errorf("get element %q: %w", id, err)
	}
	return e, nil
}

// ListElements returns all elements ordered by id.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListElements(ctx context.Context) ([]Element, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+elementColumns+" FROM elements ORDER BY id COLLATE BINARY ASC")
	if err != nil {
		return nil, fmt.Errorf("query elements: %w", err)
	}
	defer rows.Close()

	elements := []Element{}
	for rows.Next() {
		e, err := scanElement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan element: %w", err)
		}
		elements = append(elements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate elements: %w", err)
	}
	return elements, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanElement(row scanner) (Element, error) {
	var (
		e     Element
		props string
	)
	err := row.Scan(&e.ID, &e.Label, &e.Valid.From, &e.Valid.To, &e.Tx.From, &e.Tx.To, &props)
	if err != nil {
		return Element{}, err
	}
	e.Properties, err = unmarshalProperties(props)
	if err != nil {
		return Element{}, fmt.Errorf("element %q: %w", e.ID, err)
	}
	return e, nil
}
