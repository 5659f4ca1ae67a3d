package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures raised by the calculation engines
type ErrorKind string

const (
	KindInvalidParameter ErrorKind = "invalid_parameter"
	KindIRRNotFound      ErrorKind = "irr_not_found"
	KindUndefinedPayoff  ErrorKind = "undefined_payoff"
	KindRateUnresolved   ErrorKind = "rate_unresolved"
)

// Sentinels for errors.Is checks. Only the kind is compared.
var (
	ErrInvalidParameter = &CalcError{Kind: KindInvalidParameter}
	ErrIRRNotFound      = &CalcError{Kind: KindIRRNotFound}
	ErrUndefinedPayoff  = &CalcError{Kind: KindUndefinedPayoff}
	ErrRateUnresolved   = &CalcError{Kind: KindRateUnresolved}
)

// CalcError is a deterministic failure of a calculation. It carries the
// minimal context needed to diagnose it: the operation (stage) and, when
// relevant, the offending parameter.
type CalcError struct {
	Kind      ErrorKind
	Operation string
	Parameter string
	Message   string
	Cause     error
}

func (e *CalcError) Error() string {
	msg := e.Operation + ": " + e.Message
	if e.Operation == "" {
		msg = e.Message
	}
	if e.Parameter != "" {
		msg += " (" + e.Parameter + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CalcError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a CalcError of the same kind.
func (e *CalcError) Is(target error) bool {
	t, ok := target.(*CalcError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// InvalidParameter reports an input that violates a precondition.
func InvalidParameter(operation, parameter, format string, args ...any) error {
	return &CalcError{
		Kind:      KindInvalidParameter,
		Operation: operation,
		Parameter: parameter,
		Message:   fmt.Sprintf(format, args...),
	}
}

// IRRNotFound reports that no internal rate of return could be bracketed or converged.
func IRRNotFound(operation, format string, args ...any) error {
	return &CalcError{
		Kind:      KindIRRNotFound,
		Operation: operation,
		Message:   fmt.Sprintf(format, args...),
	}
}

// UndefinedPayoff reports a loan that never amortizes.
func UndefinedPayoff(operation, format string, args ...any) error {
	return &CalcError{
		Kind:      KindUndefinedPayoff,
		Operation: operation,
		Message:   fmt.Sprintf(format, args...),
	}
}

// RateUnresolved reports a rate with no user value, no admin default and no fallback.
func RateUnresolved(operation, key string) error {
	return &CalcError{
		Kind:      KindRateUnresolved,
		Operation: operation,
		Parameter: key,
		Message:   "no user value, admin default or fallback available",
	}
}

// KindOf extracts the error kind from anywhere in the chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

// ParameterOf returns the parameter named by a CalcError in the chain, if any.
func ParameterOf(err error) string {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.Parameter
	}
	return ""
}
