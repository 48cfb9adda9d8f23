package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AssetType represents the asset class of a traded instrument
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
)

// IsValid reports whether the asset type is one of the known classes
func (a AssetType) IsValid() bool {
	return a == AssetStock || a == AssetCrypto
}

// Direction represents the side of a position
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Category selects an asset-class subset of trades.
// CategoryTotal matches every asset type.
type Category string

const (
	CategoryTotal  Category = "total"
	CategoryStock  Category = "stock"
	CategoryCrypto Category = "crypto"
)

// Matches reports whether an asset type belongs to the category.
// Unknown categories behave like CategoryTotal.
func (c Category) Matches(a AssetType) bool {
	switch c {
	case CategoryStock:
		return a == AssetStock
	case CategoryCrypto:
		return a == AssetCrypto
	default:
		return true
	}
}

// ParseCategory converts a query value to a Category. Empty means total.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case "", CategoryTotal:
		return CategoryTotal, true
	case CategoryStock:
		return CategoryStock, true
	case CategoryCrypto:
		return CategoryCrypto, true
	}
	return CategoryTotal, false
}

// RawNumber holds a numeric field exactly as it arrived: a JSON number, a
// quoted string, a YAML scalar or a CSV cell. It is parsed only by the
// analytics normalizer.
type RawNumber string

// Number builds a RawNumber from a float.
func Number(v float64) RawNumber {
	return RawNumber(strconv.FormatFloat(v, 'f', -1, 64))
}

// UnmarshalJSON accepts numbers, strings and null.
func (n *RawNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = RawNumber(s)
		return nil
	}
	*n = RawNumber(data)
	return nil
}

// MarshalJSON emits a bare number when the value looks numeric and a string otherwise.
func (n RawNumber) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	return json.Marshal(string(n))
}

// UnmarshalYAML keeps the scalar text regardless of its resolved tag.
func (n *RawNumber) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*n = ""
		return nil
	}
	*n = RawNumber(value.Value)
	return nil
}

// UnmarshalCSV stores the cell text.
func (n *RawNumber) UnmarshalCSV(s string) error {
	*n = RawNumber(s)
	return nil
}

// MarshalCSV returns the cell text.
func (n RawNumber) MarshalCSV() (string, error) {
	return string(n), nil
}

// TradeRecord is one closed (or pending) trade as entered by a user.
// Notes, Tags and Link are carried through untouched.
type TradeRecord struct {
	ID          string    `json:"id" yaml:"id" csv:"id"`
	UserID      string    `json:"user_id,omitempty" yaml:"user_id,omitempty" csv:"user_id"`
	Symbol      string    `json:"symbol" yaml:"symbol" csv:"symbol" validate:"required"`
	AssetType   AssetType `json:"asset_type" yaml:"asset_type" csv:"asset_type" validate:"required,oneof=stock crypto"`
	Direction   Direction `json:"direction" yaml:"direction" csv:"direction" validate:"required,oneof=long short"`
	EntryDate   string    `json:"entry_date" yaml:"entry_date" csv:"entry_date" validate:"required"`
	ExitDate    string    `json:"exit_date,omitempty" yaml:"exit_date,omitempty" csv:"exit_date"`
	EntryPrice  RawNumber `json:"entry_price" yaml:"entry_price" csv:"entry_price"`
	ExitPrice   RawNumber `json:"exit_price" yaml:"exit_price" csv:"exit_price"`
	Quantity    RawNumber `json:"quantity" yaml:"quantity" csv:"quantity"`
	RiskPercent RawNumber `json:"risk_percent,omitempty" yaml:"risk_percent,omitempty" csv:"risk_percent"`
	Notes       string    `json:"notes,omitempty" yaml:"notes,omitempty" csv:"notes"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty" csv:"-"`
	Link        string    `json:"link,omitempty" yaml:"link,omitempty" csv:"link"`
}
