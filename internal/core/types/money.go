// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NullMoney is a monetary value that may be absent (NULL in storage).
type NullMoney = decimal.NullDecimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
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

// FromInt converts an integer count to Money.
func FromInt(n int64) Money {
	return decimal.NewFromInt(n)
}

// ClampZero returns m, or zero when m is negative.
func ClampZero(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}

// Some wraps a value into a present NullMoney.
func Some(m Money) NullMoney {
	return decimal.NullDecimal{Decimal: m, Valid: true}
}

// None is an absent NullMoney.
func None() NullMoney {
	return decimal.NullDecimal{}
}

// OrZero returns the value of n, or zero when absent.
func OrZero(n NullMoney) Money {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}
