// Package signal defines the vocabulary of vessel telemetry readings:
// signal kinds, the JSON value shapes a reading can arrive as, and the
// classification outcome for a single reading.
package signal

import "strings"

// Kind is the declared wire encoding of a registered signal.
type Kind int

const (
	// Digital signals are encoded as JSON integers 0 or 1.
	Digital Kind = iota
	// Analog signals are encoded as JSON floats in [1.0, 65535.0].
	Analog
)

// String returns the registry representation of the kind.
func (k Kind) String() string {
	if k == Digital {
		return "digital"
	}
	return "analog"
}

// KindFromString maps a registry row to a Kind. Unrecognized values fall
// back to analog, matching the loader's historical behavior.
func KindFromString(s string) Kind {
	if strings.EqualFold(strings.TrimSpace(s), "digital") {
		return Digital
	}
	return Analog
}

// Analog range bounds, inclusive.
const (
	AnalogMin = 1.0
	AnalogMax = 65535.0
)

// Shape tags the JSON value shape of an incoming reading. Integer and
// float are distinguished lexically: a number literal containing '.',
// 'e', or 'E' is a float, anything else is an integer. The distinction
// matters because digital and analog are mutually exclusive wire
// encodings, not just value ranges.
type Shape int

const (
	// ShapeInteger is a JSON number written without a fraction or exponent.
	ShapeInteger Shape = iota
	// ShapeFloat is a JSON number written with a fraction or exponent.
	ShapeFloat
	// ShapeString is a JSON string.
	ShapeString
	// ShapeBool is a JSON boolean.
	ShapeBool
	// ShapeOther covers null, arrays, objects, and anything unparsable.
	ShapeOther
)

// RawValue is the tagged union carried by one incoming reading. Num is
// meaningful only for ShapeInteger and ShapeFloat.
type RawValue struct {
	Shape Shape
	Num   float64
}

// Integer builds a RawValue for a JSON integer literal.
func Integer(v int64) RawValue {
	return RawValue{Shape: ShapeInteger, Num: float64(v)}
}

// Float builds a RawValue for a JSON float literal.
func Float(v float64) RawValue {
	return RawValue{Shape: ShapeFloat, Num: v}
}

// NonNumeric builds a RawValue for a non-number JSON value.
func NonNumeric(shape Shape) RawValue {
	return RawValue{Shape: shape}
}

// Numeric reports whether the value carries a usable number.
func (v RawValue) Numeric() bool {
	return v.Shape == ShapeInteger || v.Shape == ShapeFloat
}

// Reason explains why a reading was quarantined.
type Reason string

const (
	// ReasonTypeMismatch marks a value whose JSON shape does not match the
	// declared wire encoding.
	ReasonTypeMismatch Reason = "type_mismatch"
	// ReasonOutOfRange marks a correctly encoded value outside the valid range.
	ReasonOutOfRange Reason = "out_of_range"
	// ReasonUnknownSignal marks a name absent from the registry.
	ReasonUnknownSignal Reason = "unknown_signal"
)

// Outcome is the classification result for one reading. Exactly one of
// the two states holds: accepted with a finite, in-range value, or
// quarantined with a reason and either the offending numeric value or a
// NaN placeholder.
type Outcome struct {
	Accepted bool
	Value    float64
	Reason   Reason
}
