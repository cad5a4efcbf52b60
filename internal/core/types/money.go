// Package types provides common type aliases and utilities.
package types

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// DateLayout is the wire format for date-only fields.
const DateLayout = "2006-01-02"

// NewMoney creates a Money value from a float.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// CoerceMoney normalizes an amount-like input to Money at the mutation
// boundary. Absent or unparseable input coerces to zero, never an error.
func CoerceMoney(v any) Money {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case float64:
		return decimal.NewFromFloat(x)
	case float32:
		return decimal.NewFromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// CoerceFloat is CoerceMoney for callers that keep the value as float64
// (row payloads and the local blob store JSON).
func CoerceFloat(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// CoerceDate returns the date string unchanged when present, otherwise the
// date of now in DateLayout.
func CoerceDate(s string, now time.Time) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return now.Format(DateLayout)
}
