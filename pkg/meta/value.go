package meta

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is a raw key/value metadata record, as emitted by `exiftool -j` or an equivalent extractor.
type Record map[string]any

// Kind is the shape of a raw metadata value.
type Kind int

const (
	// Missing means the key is absent or null.
	Missing Kind = iota
	// Number is a plain integer or float.
	Number
	// Text is a string.
	Text
	// Rational is a [numerator, denominator] pair.
	Rational
	// List is any other sequence of values.
	List
	// Unknown is a value of an unrecognized type.
	Unknown
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Number:
		return "number"
	case Text:
		return "text"
	case Rational:
		return "rational"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a classified raw metadata value.
type Value struct {
	Kind Kind

	// Num holds the number, or the numerator of a rational.
	Num float64
	// Den holds the denominator of a rational.
	Den float64
	Text  string
	Items []Value
}

// Get classifies the value stored under key.
func (r Record) Get(key string) Value {
	v, ok := r[key]
	if !ok {
		return Value{Kind: Missing}
	}
	return Classify(v)
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Classify maps an untyped value onto a Value. A two-element list of numbers is a rational.
func Classify(v any) Value {
	if v == nil {
		return Value{Kind: Missing}
	}

	if f, ok := toFloat(v); ok {
		return Value{Kind: Number, Num: f}
	}

	switch t := v.(type) {
	case string:
		return Value{Kind: Text, Text: t}
	case []any:
		items := make([]Value, 0, len(t))
		for _, i := range t {
			items = append(items, Classify(i))
		}
		return fromItems(items)
	case []float64:
		items := make([]Value, 0, len(t))
		for _, f := range t {
			items = append(items, Value{Kind: Number, Num: f})
		}
		return fromItems(items)
	case []int64:
		items := make([]Value, 0, len(t))
		for _, n := range t {
			items = append(items, Value{Kind: Number, Num: float64(n)})
		}
		return fromItems(items)
	case []int:
		items := make([]Value, 0, len(t))
		for _, n := range t {
			items = append(items, Value{Kind: Number, Num: float64(n)})
		}
		return fromItems(items)
	case []string:
		items := make([]Value, 0, len(t))
		for _, s := range t {
			items = append(items, Value{Kind: Text, Text: s})
		}
		return fromItems(items)
	}

	return Value{Kind: Unknown, Text: fmt.Sprint(v)}
}

func fromItems(items []Value) Value {
	if len(items) == 2 && items[0].Kind == Number && items[1].Kind == Number {
		return Value{Kind: Rational, Num: items[0].Num, Den: items[1].Num, Items: items}
	}
	return Value{Kind: List, Items: items}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint8:
		return float64(n), true
	}
	return 0, false
}

// Float returns the numeric value of a Number or a rational with a non-zero denominator.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case Number:
		return v.Num, true
	case Rational:
		if v.Den == 0 {
			return 0, false
		}
		return v.Num / v.Den, true
	case Missing, Text, List, Unknown:
		return 0, false
	}
	return 0, false
}

// String renders a value for display: integral numbers without a fraction, rationals as n/d.
func (v Value) String() string {
	switch v.Kind {
	case Missing:
		return ""
	case Number:
		return formatNumber(v.Num)
	case Text:
		return v.Text
	case Rational:
		return formatNumber(v.Num) + "/" + formatNumber(v.Den)
	case List:
		parts := make([]string, 0, len(v.Items))
		for _, i := range v.Items {
			parts = append(parts, i.String())
		}
		return strings.Join(parts, " ")
	case Unknown:
		return v.Text
	}
	return v.Text
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatDegrees renders a float the way a decimal degree is conventionally written: always at least one decimal.
func formatDegrees(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
