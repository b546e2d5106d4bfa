package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ramonehamilton/deck-advisor/internal/cards"
	"github.com/ramonehamilton/deck-advisor/internal/combos"
)

// importBatchSize bounds transaction size during bulk corpus imports.
const importBatchSize = 500

// ImportCards streams a JSON array of cards into the card store. Cards with
// missing type fields are normalized from their type line before saving.
// Returns the number of cards imported.
func (s *CardStore) ImportCards(ctx context.Context, r io.Reader) (int, error) {
	decoder := json.NewDecoder(r)

	if err := expectDelim(decoder, '['); err != nil {
		return 0, fmt.Errorf("card corpus must be a JSON array: %w", err)
	}

	imported := 0
	batch := make([]*cards.Card, 0, importBatchSize)
	for decoder.More() {
		var card cards.Card
		if err := decoder.Decode(&card); err != nil {
			return imported, fmt.Errorf("failed to decode card %d: %w", imported+1, err)
		}
		if card.Name == "" {
			continue
		}
		card.Normalize()
		batch = append(batch, &card)

		if len(batch) >= importBatchSize {
			if err := s.UpsertCards(ctx, batch); err != nil {
				return imported, err
			}
			imported += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.UpsertCards(ctx, batch); err != nil {
			return imported, err
		}
		imported += len(batch)
	}

	return imported, nil
}

// ImportCardsFile imports a card corpus from a JSON file on disk.
func (s *CardStore) ImportCardsFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open card corpus file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.ImportCards(ctx, f)
}

// ImportCombos streams a JSON array of combos into the combo store.
// Returns the number of combos imported.
func (s *ComboStore) ImportCombos(ctx context.Context, r io.Reader) (int, error) {
	decoder := json.NewDecoder(r)

	if err := expectDelim(decoder, '['); err != nil {
		return 0, fmt.Errorf("combo corpus must be a JSON array: %w", err)
	}

	imported := 0
	batch := make([]*combos.Combo, 0, importBatchSize)
	for decoder.More() {
		var combo combos.Combo
		if err := decoder.Decode(&combo); err != nil {
			return imported, fmt.Errorf("failed to decode combo %d: %w", imported+1, err)
		}
		if combo.ID == "" {
			continue
		}
		batch = append(batch, &combo)

		if len(batch) >= importBatchSize {
			if err := s.UpsertCombos(ctx, batch); err != nil {
				return imported, err
			}
			imported += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.UpsertCombos(ctx, batch); err != nil {
			return imported, err
		}
		imported += len(batch)
	}

	return imported, nil
}

// ImportCombosFile imports a combo corpus from a JSON file on disk.
func (s *ComboStore) ImportCombosFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open combo corpus file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.ImportCombos(ctx, f)
}

// expectDelim consumes the next JSON token and checks it is the given
// delimiter.
func expectDelim(decoder *json.Decoder, want json.Delim) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	delim, ok := token.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, token)
	}
	return nil
}
