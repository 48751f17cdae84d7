package tracker

import (
	"fmt"

	"github.com/LeoDroves/mtga-log-client/internal/parser"
)

// ExpandDecklistV3 expands a flat alternating sequence of
// (card id, count, card id, count, ...) elements into a card id list
// repeating each id count times. Odd-length input is malformed and rejects
// the whole message.
func ExpandDecklistV3(decklist []interface{}) ([]int, error) {
	if len(decklist)%2 != 0 {
		return nil, fmt.Errorf("decklist has odd length %d", len(decklist))
	}

	result := []int{}
	for i := 0; i < len(decklist); i += 2 {
		cardID, ok := parser.AsInt(decklist[i])
		if !ok {
			return nil, fmt.Errorf("non-numeric card id at index %d", i)
		}
		count, ok := parser.AsInt(decklist[i+1])
		if !ok {
			return nil, fmt.Errorf("non-numeric count at index %d", i+1)
		}
		for j := 0; j < count; j++ {
			result = append(result, cardID)
		}
	}
	return result, nil
}

// expandQuantifiedDecklist expands the older deck form, a list of
// {"Id": ..., "Quantity": ...} objects.
func expandQuantifiedDecklist(deckInfo map[string]interface{}, key string) ([]int, error) {
	raw, err := requireSlice(deckInfo, key)
	if err != nil {
		return nil, err
	}

	result := []int{}
	for _, entry := range raw {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			return nil, missingField(key)
		}
		cardID, err := requireInt(obj, "Id")
		if err != nil {
			return nil, err
		}
		quantity, err := requireInt(obj, "Quantity")
		if err != nil {
			return nil, err
		}
		for j := 0; j < quantity; j++ {
			result = append(result, cardID)
		}
	}
	return result, nil
}
