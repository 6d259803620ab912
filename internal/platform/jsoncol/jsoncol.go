// Package jsoncol encodes the list values that live in relational TEXT columns as JSON arrays
// (items.item_hash holds strings, members.recent holds integers).
package jsoncol

import (
	"database/sql"
	"math"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var (
	json       = jsoniter.ConfigCompatibleWithStandardLibrary
	jsonNumber = jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		UseNumber:              true,
	}.Froze()
)

// EncodeStrings renders tags as a JSON array; a nil slice becomes "[]".
func EncodeStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeStrings parses a JSON array of strings. Order is preserved.
func DecodeStrings(s string) ([]string, error) {
	var out []string
	if err := json.UnmarshalFromString(s, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func EncodeIDs(v []int64) (string, error) {
	if v == nil {
		v = []int64{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeIDs parses a JSON array of integer ids. NULL or blank columns decode to an empty list.
// Integral numbers that fit in int64 are accepted; other elements are skipped.
func DecodeIDs(col sql.NullString) ([]int64, error) {
	if !col.Valid || strings.TrimSpace(col.String) == "" {
		return []int64{}, nil
	}
	var raw []any
	if err := jsonNumber.UnmarshalFromString(col.String, &raw); err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case interface {
			Int64() (int64, error)
			Float64() (float64, error)
		}:
			if id, err := n.Int64(); err == nil {
				out = append(out, id)
			} else if f, err := n.Float64(); err == nil && integral(f) {
				out = append(out, int64(f))
			}
		case float64:
			if integral(n) {
				out = append(out, int64(n))
			}
		}
	}
	return out, nil
}

// integral reports whether f is a whole number inside the int64 range.
// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
func integral(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}
