package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
)

// CardStore persists the card corpus. It satisfies the engine's read-only
// cards.Store interface; writes go through UpsertCards during import.
type CardStore struct {
	db *DB
}

// NewCardStore creates a card store over an open database.
func NewCardStore(db *DB) *CardStore {
	return &CardStore{db: db}
}

const cardColumns = `name, mana_cost, mana_value, type_line, types, subtypes, supertypes,
	       rules_text, keywords, colors, power, toughness`

// AllCards returns every card in the corpus, ordered by name.
func (s *CardStore) AllCards(ctx context.Context) ([]*cards.Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards ORDER BY name ASC`, cardColumns)

	rows, err := s.db.Conn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*cards.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return result, nil
}

// GetCard retrieves a card by name, case-insensitively. Returns nil without
// error when the card is unknown.
func (s *CardStore) GetCard(ctx context.Context, name string) (*cards.Card, error) {
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE name = ?`, cardColumns)

	row := s.db.Conn().QueryRowContext(ctx, query, name)
	card, err := scanCard(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

// Count returns the number of cards in the corpus.
func (s *CardStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.Conn().QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

// UpsertCards saves or updates a batch of cards in a single transaction.
func (s *CardStore) UpsertCards(ctx context.Context, batch []*cards.Card) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO cards (
			name, mana_cost, mana_value, type_line, types, subtypes, supertypes,
			rules_text, keywords, colors, power, toughness, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			mana_cost = excluded.mana_cost,
			mana_value = excluded.mana_value,
			type_line = excluded.type_line,
			types = excluded.types,
			subtypes = excluded.subtypes,
			supertypes = excluded.supertypes,
			rules_text = excluded.rules_text,
			keywords = excluded.keywords,
			colors = excluded.colors,
			power = excluded.power,
			toughness = excluded.toughness,
			updated_at = CURRENT_TIMESTAMP
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare card upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, card := range batch {
		if card == nil || card.Name == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			card.Name, card.ManaCost, card.ManaValue, card.TypeLine,
			marshalStrings(card.Types), marshalStrings(card.Subtypes), marshalStrings(card.Supertypes),
			card.RulesText, marshalStrings(card.Keywords), marshalStrings(card.Colors),
			card.Power, card.Toughness,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert card %s: %w", card.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit card upsert: %w", err)
	}

	return nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanCard reads one card row into a domain Card.
func scanCard(row scanner) (*cards.Card, error) {
	var card cards.Card
	var types, subtypes, supertypes, keywords, colors string

	err := row.Scan(
		&card.Name, &card.ManaCost, &card.ManaValue, &card.TypeLine,
		&types, &subtypes, &supertypes,
		&card.RulesText, &keywords, &colors, &card.Power, &card.Toughness,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}

	if card.Types, err = unmarshalStrings(types); err != nil {
		return nil, fmt.Errorf("failed to decode types for %s: %w", card.Name, err)
	}
	if card.Subtypes, err = unmarshalStrings(subtypes); err != nil {
		return nil, fmt.Errorf("failed to decode subtypes for %s: %w", card.Name, err)
	}
	if card.Supertypes, err = unmarshalStrings(supertypes); err != nil {
		return nil, fmt.Errorf("failed to decode supertypes for %s: %w", card.Name, err)
	}
	if card.Keywords, err = unmarshalStrings(keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keywords for %s: %w", card.Name, err)
	}
	if card.Colors, err = unmarshalStrings(colors); err != nil {
		return nil, fmt.Errorf("failed to decode colors for %s: %w", card.Name, err)
	}

	return &card, nil
}

// marshalStrings encodes a string slice as a JSON text column. Nil encodes as
// an empty array so scans never see NULL.
func marshalStrings(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

// unmarshalStrings decodes a JSON text column into a string slice.
func unmarshalStrings(encoded string) ([]string, error) {
	if encoded == "" || encoded == "[]" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return nil, err
	}
	return list, nil
}
