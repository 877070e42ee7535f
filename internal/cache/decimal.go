package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"medrag/internal/models"
)

// ToDecimal walks a decoded JSON tree and rewrites every binary float as an
// exact decimal literal. Integers, strings, booleans and nil pass through.
// Non-finite floats become nil since no decimal form exists.
func ToDecimal(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = ToDecimal(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = ToDecimal(item)
		}
		return out
	case float64:
		return decimalFromFloat(x, 64)
	case float32:
		return decimalFromFloat(float64(x), 32)
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return x
		}
		f, err := x.Float64()
		if err != nil {
			return x
		}
		return decimalFromFloat(f, 64)
	default:
		return v
	}
}

func decimalFromFloat(f float64, bits int) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return json.Number(strconv.FormatFloat(f, 'f', -1, bits))
}

// Encode serializes an entry with all floats in decimal form.
func Encode(e models.CacheEntry) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode cache tree: %w", err)
	}
	out, err := json.Marshal(ToDecimal(tree))
	if err != nil {
		return nil, fmt.Errorf("marshal decimal tree: %w", err)
	}
	return out, nil
}

func Decode(b []byte) (models.CacheEntry, error) {
	var e models.CacheEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return models.CacheEntry{}, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return e, nil
}
