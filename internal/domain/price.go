package domain

import "time"

// DateLayout is the canonical format of price table keys.
const DateLayout = "2006-01-02"

// PriceTable holds item prices for a single date.
type PriceTable struct {
	Date  string
	Items map[string]float64
}

// ParseDate validates a price date key and returns it in canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}
