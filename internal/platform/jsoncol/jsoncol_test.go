package jsoncol

import (
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringsRoundTripKeepsOrder(t *testing.T) {
	in := []string{"캠핑", "의자", "a\"b", "outdoor"}
	enc, err := EncodeStrings(in)
	require.NoError(t, err)

	out, err := DecodeStrings(enc)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncodeStringsNil(t *testing.T) {
	enc, err := EncodeStrings(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", enc)

	out, err := DecodeStrings("null")
	require.NoError(t, err)
	assert.Equal(t, []string{}, out)
}

func TestDecodeStringsMalformed(t *testing.T) {
	_, err := DecodeStrings("[\"open")
	assert.Error(t, err)
}

func TestDecodeIDs(t *testing.T) {
	tests := []struct {
		name string
		col  sql.NullString
		want []int64
	}{
		{"null column", sql.NullString{}, []int64{}},
		{"blank", sql.NullString{String: "  ", Valid: true}, []int64{}},
		{"empty array", sql.NullString{String: "[]", Valid: true}, []int64{}},
		{"ints", sql.NullString{String: "[3,7,3]", Valid: true}, []int64{3, 7, 3}},
		{"wide", sql.NullString{String: "[9007199254740993]", Valid: true}, []int64{9007199254740993}},
		{"float encoded", sql.NullString{String: "[1.0, 2]", Valid: true}, []int64{1, 2}},
		{"junk skipped", sql.NullString{String: `[1, "x", 2.5, null, 4]`, Valid: true}, []int64{1, 4}},
		{"out of range skipped", sql.NullString{String: `[1e20, -1e20, 9223372036854775808, 6]`, Valid: true}, []int64{6}},
		{"int64 bounds", sql.NullString{String: `[-9223372036854775808, 9223372036854775807]`, Valid: true}, []int64{math.MinInt64, math.MaxInt64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeIDs(tt.col)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeIDsMalformed(t *testing.T) {
	_, err := DecodeIDs(sql.NullString{String: "{broken", Valid: true})
	assert.Error(t, err)
}

func TestEncodeIDs(t *testing.T) {
	enc, err := EncodeIDs([]int64{7, 3})
	require.NoError(t, err)
	assert.Equal(t, "[7,3]", enc)

	enc, err = EncodeIDs(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", enc)
}
