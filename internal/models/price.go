package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"bid-ledger/internal/biddingerrors"

	"github.com/shopspring/decimal"
)

// Supported precision: at most 18 fractional digits, 20 integer digits and 38 significant digits.
const (
	MaxPriceScale         = 18
	MaxPriceIntegerDigits = 20
	MaxPriceDigits        = 38
)

// Price is a monetary amount with exact decimal semantics.
// It encodes to JSON as a bare number using the decimal's own text, so 10.50 stays 10.50.
type Price struct {
	decimal.Decimal
}

// NewPrice wraps a decimal value
func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

// MustPrice parses text and panics on failure. Intended for tests and fixtures.
func MustPrice(text string) Price {
	p, err := ParsePrice(text)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePrice parses caller input into a positive decimal price
func ParsePrice(text string) (Price, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Price{}, fmt.Errorf("%w - missing price", biddingerrors.ErrInvalidPrice)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return Price{}, fmt.Errorf("%w - %q is not a decimal", biddingerrors.ErrInvalidPrice, text)
	}

	p := Price{Decimal: d}
	if err := p.Validate(); err != nil {
		return Price{}, err
	}
	return p, nil
}

// Validate checks that the price is positive and within the supported precision
func (p Price) Validate() error {
	if err := checkPrecision(p.Decimal); err != nil {
		return err
	}
	if !p.IsPositive() {
		return fmt.Errorf("%w - non-positive price %s", biddingerrors.ErrInvalidPrice, p.Text())
	}
	return nil
}

// checkPrecision runs before any formatting: the text of an unbounded exponent is unbounded too
func checkPrecision(d decimal.Decimal) error {
	digits := d.NumDigits()
	exp := int64(d.Exponent())
	switch {
	case exp < -MaxPriceScale:
		return fmt.Errorf("%w - more than %d fractional digits", biddingerrors.ErrInvalidPrice, MaxPriceScale)
	case digits > MaxPriceDigits:
		return fmt.Errorf("%w - more than %d significant digits", biddingerrors.ErrInvalidPrice, MaxPriceDigits)
	case !d.IsZero() && int64(digits)+exp > MaxPriceIntegerDigits:
		return fmt.Errorf("%w - more than %d integer digits", biddingerrors.ErrInvalidPrice, MaxPriceIntegerDigits)
	}
	return nil
}

// Text returns the exact decimal text, keeping trailing zeros of the original input
func (p Price) Text() string {
	if p.Exponent() >= 0 {
		return p.String()
	}
	return p.StringFixed(-p.Exponent())
}

// MarshalJSON writes the price as a JSON number: integral values as integers, fractional values
// with their original scale.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Text()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w - null price", biddingerrors.ErrInvalidPrice)
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("%w - %v", biddingerrors.ErrInvalidPrice, err)
		}
	}

	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return fmt.Errorf("%w - %q is not a decimal", biddingerrors.ErrInvalidPrice, text)
	}
	if err := checkPrecision(d); err != nil {
		return err
	}
	p.Decimal = d
	return nil
}

// Value stores the price as exact decimal text
func (p Price) Value() (driver.Value, error) {
	return p.Text(), nil
}

// Scan reads a price from any representation the database driver returns
func (p *Price) Scan(value any) error {
	return p.Decimal.Scan(value)
}

// Compare returns -1, 0 or +1
func (p Price) Compare(other Price) int {
	return p.Cmp(other.Decimal)
}
