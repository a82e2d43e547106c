package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// PriceScale matches the NUMERIC(12, 2) price columns.
const PriceScale = 2

var errNoPrice = errors.New("price not set")

// Price accepts either a JSON number or a numeric string, as the admin UI
// sends whatever the form field holds.
type Price struct {
	raw string
}

func NewPrice(raw string) Price { return Price{raw: strings.TrimSpace(raw)} }

func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		p.raw = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		p.raw = strings.TrimSpace(s)
		return nil
	}
	p.raw = string(b)
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.raw)
}

// Decimal parses the raw value, rounded to PriceScale places.
func (p Price) Decimal() (decimal.Decimal, error) {
	if p.raw == "" {
		return decimal.Zero, errNoPrice
	}
	d, err := decimal.NewFromString(p.raw)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(PriceScale), nil
}

// Coerce returns a non-negative price, using 0 for anything unparsable.
func (p Price) Coerce() decimal.Decimal {
	d, err := p.Decimal()
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
