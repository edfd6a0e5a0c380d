package signal

import "math"

// Classify applies the decision table for one reading. kind is only
// consulted when known is true; an unknown name is always quarantined.
// The function is total and pure: every (kind, value) pair yields exactly
// one outcome and the same pair always yields the same outcome.
//
// Digital accepts only the JSON integers 0 and 1. Analog accepts only
// JSON floats in [AnalogMin, AnalogMax]. An in-range analog value sent as
// an integer is a type mismatch, and vice versa for digital: the two
// encodings are disjoint on the wire so producer encoding bugs surface
// instead of being coerced.
func Classify(kind Kind, known bool, v RawValue) Outcome {
	if !known {
		if v.Numeric() {
			return quarantined(v.Num, ReasonUnknownSignal)
		}
		return quarantined(math.NaN(), ReasonUnknownSignal)
	}

	switch kind {
	case Digital:
		if v.Shape != ShapeInteger {
			return quarantined(math.NaN(), ReasonTypeMismatch)
		}
		if v.Num == 0 || v.Num == 1 {
			return accepted(v.Num)
		}
		return quarantined(v.Num, ReasonOutOfRange)

	case Analog:
		if v.Shape != ShapeFloat {
			return quarantined(math.NaN(), ReasonTypeMismatch)
		}
		if v.Num >= AnalogMin && v.Num <= AnalogMax {
			return accepted(v.Num)
		}
		return quarantined(v.Num, ReasonOutOfRange)
	}

	return quarantined(math.NaN(), ReasonTypeMismatch)
}

func accepted(value float64) Outcome {
	return Outcome{Accepted: true, Value: value}
}

func quarantined(value float64, reason Reason) Outcome {
	return Outcome{Value: value, Reason: reason}
}
