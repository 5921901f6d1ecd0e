package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractText flattens a model response of unknown shape into a single string.
// A nil return is the "already structured" sentinel: the response carries a
// pre-computed itinerary object and no text extraction is needed.
// ExtractText never fails; anything unrecognized is JSON-dumped.
func ExtractText(resp any) *string {
	if _, ok := StructuredItinerary(resp); ok {
		return nil
	}

	if s, ok := resp.(string); ok {
		return &s
	}

	if m, ok := resp.(map[string]any); ok {
		for _, key := range []string{"text", "generated_text", "output_text"} {
			if s, ok := m[key].(string); ok {
				return &s
			}
		}
		if blocks, ok := m["output"].([]any); ok {
			s := joinOutputBlocks(blocks)
			return &s
		}
		if cands, ok := m["candidates"].([]any); ok {
			s := joinCandidates(cands)
			return &s
		}
	}

	// Bare arrays are treated as candidate lists (the HuggingFace
	// text-generation response is an array of {generated_text}).
	if cands, ok := resp.([]any); ok {
		s := joinCandidates(cands)
		return &s
	}

	s := stringify(resp)
	return &s
}

// StructuredItinerary returns the pre-computed itinerary object when the
// response carries one (the fast-path signal of the extractor).
func StructuredItinerary(resp any) (map[string]any, bool) {
	m, ok := resp.(map[string]any)
	if !ok {
		return nil, false
	}
	it, ok := m["itinerary"].(map[string]any)
	return it, ok
}

// joinOutputBlocks concatenates every text fragment across the output blocks
// and their nested content items, in array order.
func joinOutputBlocks(blocks []any) string {
	var parts []string
	for _, b := range blocks {
		bm, ok := b.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := bm["text"].(string); ok {
			parts = append(parts, s)
			continue
		}
		content, ok := bm["content"].([]any)
		if !ok {
			continue
		}
		for _, c := range content {
			cm, ok := c.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := cm["text"].(string); ok {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// joinCandidates joins each candidate's best textual representation:
// explicit output field, then generic content, then a JSON dump.
func joinCandidates(cands []any) string {
	var parts []string
	for _, c := range cands {
		cm, ok := c.(map[string]any)
		if !ok {
			parts = append(parts, stringify(c))
			continue
		}
		picked := false
		for _, key := range []string{"output", "generated_text", "content"} {
			if s, ok := cm[key].(string); ok {
				parts = append(parts, s)
				picked = true
				break
			}
		}
		if !picked {
			parts = append(parts, stringify(cm))
		}
	}
	return strings.Join(parts, "\n")
}

func stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
