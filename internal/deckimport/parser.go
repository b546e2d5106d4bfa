// Package deckimport parses deck lists from common text export formats into
// the entries the recommendation engine consumes.
package deckimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParsedCard represents a single card line in a deck import.
type ParsedCard struct {
	Quantity int
	Name     string
	SetCode  string // Optional, extracted from formats like "4 Lightning Bolt (M21) 123"
	Board    string // "main" or "sideboard"
}

// ParsedDeck represents a deck parsed from an import string.
type ParsedDeck struct {
	Mainboard []*ParsedCard
	Sideboard []*ParsedCard
	ParsedOK  bool
	Errors    []string
	Warnings  []string
}

// Entries merges mainboard lines into name/quantity pairs, summing duplicate
// lines. Order follows first appearance.
func (d *ParsedDeck) Entries() []*ParsedCard {
	index := make(map[string]*ParsedCard)
	var merged []*ParsedCard
	for _, card := range d.Mainboard {
		key := strings.ToLower(card.Name)
		if existing, ok := index[key]; ok {
			existing.Quantity += card.Quantity
			continue
		}
		entry := &ParsedCard{Quantity: card.Quantity, Name: card.Name, Board: "main"}
		index[key] = entry
		merged = append(merged, entry)
	}
	return merged
}

// Names returns the distinct mainboard card names in order of appearance.
func (d *ParsedDeck) Names() []string {
	entries := d.Entries()
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	return names
}

// Arena format: "4 Lightning Bolt (M21) 123" or "4 Lightning Bolt"
var arenaLineRegex = regexp.MustCompile(`^(\d+)\s+([^(]+?)(?:\s+\(([A-Z0-9]+)\)(?:\s+(\d+))?)?$`)

// Plain text: "4 Card Name" / "4x Card Name", and "Card Name x4"
var (
	quantityFirstRegex = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)
	quantityLastRegex  = regexp.MustCompile(`^(.+?)\s+x(\d+)$`)
)

// Parse attempts to parse deck list text from multiple formats.
// It tries Arena format first, then falls back to plain text.
func Parse(input string) (*ParsedDeck, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty deck list")
	}

	if deck := parseArenaFormat(input); deck.ParsedOK {
		return deck, nil
	}
	if deck := parsePlainText(input); deck.ParsedOK {
		return deck, nil
	}

	return nil, fmt.Errorf("unable to parse deck list format")
}

// parseArenaFormat parses the MTG Arena deck export format.
// Format example:
//
//	Deck
//	4 Lightning Bolt (M21) 123
//	2 Shock (M21) 124
//
//	2 Duress (M21) 95
//
// The first empty line separates mainboard from sideboard.
func parseArenaFormat(input string) *ParsedDeck {
	deck := newParsedDeck()

	board := "main"
	foundEmptyLine := false
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)

		// Skip section headers from newer Arena exports
		if line == "Deck" || line == "Sideboard" || line == "Commander" {
			if line == "Sideboard" {
				board = "sideboard"
			}
			continue
		}

		if line == "" {
			if !foundEmptyLine && board == "main" {
				board = "sideboard"
				foundEmptyLine = true
			}
			continue
		}

		matches := arenaLineRegex.FindStringSubmatch(line)
		if matches == nil {
			deck.Warnings = append(deck.Warnings,
				fmt.Sprintf("Line %d: Could not parse '%s'", i+1, line))
			continue
		}

		quantity, err := strconv.Atoi(matches[1])
		if err != nil || quantity <= 0 {
			deck.Errors = append(deck.Errors,
				fmt.Sprintf("Line %d: Invalid quantity '%s'", i+1, matches[1]))
			deck.ParsedOK = false
			continue
		}

		deck.add(&ParsedCard{
			Quantity: quantity,
			Name:     strings.TrimSpace(matches[2]),
			SetCode:  matches[3],
			Board:    board,
		})
	}

	parsed := len(deck.Mainboard) + len(deck.Sideboard)
	if parsed == 0 {
		deck.ParsedOK = false
		deck.Errors = append(deck.Errors, "No cards found in deck list")
	} else if len(deck.Warnings) >= parsed {
		// Mostly unparseable lines: let the plain-text parser try instead.
		deck.ParsedOK = false
	}

	return deck
}

// parsePlainText parses simple text format card lists.
// Format examples:
//   - "4 Lightning Bolt"
//   - "4x Lightning Bolt"
//   - "Lightning Bolt x4"
func parsePlainText(input string) *ParsedDeck {
	deck := newParsedDeck()

	board := "main"
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "sideboard") {
			board = "sideboard"
			continue
		}

		var quantity int
		var cardName string
		var matched bool

		if matches := quantityFirstRegex.FindStringSubmatch(line); matches != nil {
			if q, err := strconv.Atoi(matches[1]); err == nil {
				quantity = q
				cardName = strings.TrimSpace(matches[2])
				matched = true
			}
		}
		if !matched {
			if matches := quantityLastRegex.FindStringSubmatch(line); matches != nil {
				if q, err := strconv.Atoi(matches[2]); err == nil {
					quantity = q
					cardName = strings.TrimSpace(matches[1])
					matched = true
				}
			}
		}

		if !matched || quantity <= 0 {
			deck.Warnings = append(deck.Warnings,
				fmt.Sprintf("Line %d: Could not parse '%s'", i+1, line))
			continue
		}

		deck.add(&ParsedCard{Quantity: quantity, Name: cardName, Board: board})
	}

	if len(deck.Mainboard) == 0 && len(deck.Sideboard) == 0 {
		deck.ParsedOK = false
		deck.Errors = append(deck.Errors, "No cards found in deck list")
	}

	return deck
}

func newParsedDeck() *ParsedDeck {
	return &ParsedDeck{
		Mainboard: make([]*ParsedCard, 0),
		Sideboard: make([]*ParsedCard, 0),
		ParsedOK:  true,
		Errors:    make([]string, 0),
		Warnings:  make([]string, 0),
	}
}

func (d *ParsedDeck) add(card *ParsedCard) {
	if card.Board == "sideboard" {
		d.Sideboard = append(d.Sideboard, card)
		return
	}
	d.Mainboard = append(d.Mainboard, card)
}
