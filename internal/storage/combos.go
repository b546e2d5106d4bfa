package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/deck-advisor/internal/combos"
)

// ComboStore persists the known-combo corpus. It satisfies the engine's
// read-only combos.Store interface; writes go through UpsertCombos.
type ComboStore struct {
	db *DB
}

// NewComboStore creates a combo store over an open database.
func NewComboStore(db *DB) *ComboStore {
	return &ComboStore{db: db}
}

// AllCombos returns every combo in the corpus, ordered by id.
func (s *ComboStore) AllCombos(ctx context.Context) ([]*combos.Combo, error) {
	query := `
		SELECT id, cards, description, color_identity, popularity, bracket
		FROM combos
		ORDER BY id ASC
	`

	rows, err := s.db.Conn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query combos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*combos.Combo
	for rows.Next() {
		combo, err := scanCombo(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, combo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating combos: %w", err)
	}

	return result, nil
}

// GetCombo retrieves a combo by id. Returns nil without error when unknown.
func (s *ComboStore) GetCombo(ctx context.Context, id string) (*combos.Combo, error) {
	query := `
		SELECT id, cards, description, color_identity, popularity, bracket
		FROM combos
		WHERE id = ?
	`

	combo, err := scanCombo(s.db.Conn().QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return combo, nil
}

// Count returns the number of combos in the corpus.
func (s *ComboStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM combos`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count combos: %w", err)
	}
	return count, nil
}

// UpsertCombos saves or updates a batch of combos in a single transaction.
func (s *ComboStore) UpsertCombos(ctx context.Context, batch []*combos.Combo) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO combos (
			id, cards, description, color_identity, popularity, bracket, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			cards = excluded.cards,
			description = excluded.description,
			color_identity = excluded.color_identity,
			popularity = excluded.popularity,
			bracket = excluded.bracket,
			updated_at = CURRENT_TIMESTAMP
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare combo upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, combo := range batch {
		if combo == nil || combo.ID == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			combo.ID, marshalStrings(combo.Cards), combo.Description,
			combo.ColorIdentity, combo.Popularity, combo.Bracket,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert combo %s: %w", combo.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit combo upsert: %w", err)
	}

	return nil
}

// scanCombo reads one combo row into a domain Combo.
func scanCombo(row scanner) (*combos.Combo, error) {
	var combo combos.Combo
	var cardList string

	err := row.Scan(
		&combo.ID, &cardList, &combo.Description,
		&combo.ColorIdentity, &combo.Popularity, &combo.Bracket,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan combo: %w", err)
	}

	if combo.Cards, err = unmarshalStrings(cardList); err != nil {
		return nil, fmt.Errorf("failed to decode cards for combo %s: %w", combo.ID, err)
	}

	return &combo, nil
}
