package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxPriceIntegerDigits bounds the whole part of a price: ten significant
// digits in total, two of them after the decimal point.
const MaxPriceIntegerDigits = 8

// ErrInvalidPrice is returned by ParsePrice for malformed input.
var ErrInvalidPrice = errors.New("invalid price")

// Price is an amount in minor units (kopecks, cents). It renders with
// exactly two fractional digits.
type Price int64

var maxPrice = decimal.New(1, MaxPriceIntegerDigits)

// ParsePrice parses "199", "199.5" or "199.50". A comma is accepted as the
// decimal separator. Negative values, exponents, more than two fractional
// digits and more than MaxPriceIntegerDigits whole digits are rejected.
func ParsePrice(s string) (Price, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	if d.IsNegative() || d.Exponent() < -2 || d.GreaterThanOrEqual(maxPrice) {
		return 0, ErrInvalidPrice
	}
	return Price(d.Shift(2).IntPart()), nil
}

// Decimal returns the price in major units.
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -2)
}

// String renders the price as "123.45".
func (p Price) String() string {
	return p.Decimal().StringFixed(2)
}

// MarshalJSON encodes the price as a decimal string so no precision is lost.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts the string form produced by MarshalJSON.
func (p *Price) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("price must be a decimal string: %w", err)
	}
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
