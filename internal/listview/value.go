package listview

import (
	"cmp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type kind uint8

const (
	kindNone kind = iota
	kindString
	kindNumber
	kindTime
	kindBool
)

// Value is a sortable field value. The zero Value is "missing" and orders
// before every present value.
type Value struct {
	k kind
	s string
	n float64
	t time.Time
	b bool
}

func String(s string) Value { return Value{k: kindString, s: s} }

func Number(n float64) Value { return Value{k: kindNumber, n: n} }

func Int(n int) Value { return Value{k: kindNumber, n: float64(n)} }

func Decimal(d decimal.Decimal) Value { return Value{k: kindNumber, n: d.InexactFloat64()} }

func Time(t time.Time) Value { return Value{k: kindTime, t: t} }

func Bool(b bool) Value { return Value{k: kindBool, b: b} }

// Missing is the explicit absent value.
func Missing() Value { return Value{} }

// Compare orders a and b by their native ordering: lexicographic strings,
// numbers, chronological times, false before true.
func Compare(a, b Value) int {
	if a.k != b.k {
		if a.k == kindNone {
			return -1
		}
		if b.k == kindNone {
			return 1
		}
		return cmp.Compare(a.k, b.k)
	}
	switch a.k {
	case kindString:
		return strings.Compare(a.s, b.s)
	case kindNumber:
		return cmp.Compare(a.n, b.n)
	case kindTime:
		return a.t.Compare(b.t)
	case kindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	}
	return 0
}
