package alarms

import "errors"

// Operator compares a reading against a threshold.
type Operator string

const (
	OperatorGreater        Operator = ">"
	OperatorGreaterOrEqual Operator = ">="
	OperatorLess           Operator = "<"
	OperatorLessOrEqual    Operator = "<="
)

// Valid returns true when the operator is supported.
func (o Operator) Valid() bool {
	switch o {
	case OperatorGreater, OperatorGreaterOrEqual, OperatorLess, OperatorLessOrEqual:
		return true
	default:
		return false
	}
}

// Matches applies the operator to a reading.
func (o Operator) Matches(value, threshold float64) bool {
	switch o {
	case OperatorGreater:
		return value > threshold
	case OperatorGreaterOrEqual:
		return value >= threshold
	case OperatorLess:
		return value < threshold
	case OperatorLessOrEqual:
		return value <= threshold
	default:
		return false
	}
}

// Rule is a threshold rule evaluated against every recorded reading.
type Rule struct {
	Name      string
	Operator  Operator
	Threshold float64
	Severity  string
}

// Validate checks rule invariants.
func (r Rule) Validate() error {
	if r.Name == "" {
		return errors.New("alarm rule: empty name")
	}
	if !r.Operator.Valid() {
		return errors.New("alarm rule: invalid operator")
	}
	if r.Severity == "" {
		return errors.New("alarm rule: empty severity")
	}
	return nil
}
