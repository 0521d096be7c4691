package core

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// InvariantViolation describes a commit that failed after its paired
// validation succeeded. It means the caller broke the validate-then-commit
// protocol or the ledger is corrupt.
type InvariantViolation struct {
	Operation string
	Item      ItemRef
	Mode      TrackingMode
	Cause     error
}

func (v *InvariantViolation) Error() string {
	if v == nil {
		return "core: invariant violation"
	}
	return fmt.Sprintf(
		"core: invariant violated in %s for %s (%s): %v",
		v.Operation,
		v.Item,
		v.Mode,
		v.Cause,
	)
}

func (v *InvariantViolation) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.Cause
}

// ToError renders the violation as a critical go-errors envelope.
func (v *InvariantViolation) ToError() *goerrors.Error {
	metadata := itemMetadata(v.Item)
	metadata["operation"] = v.Operation
	metadata["tracking_mode"] = string(v.Mode)
	return goerrors.Wrap(v, goerrors.CategoryInternal, "core: invariant violation").
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorCodeInvariantViolation).
		WithSeverity(goerrors.SeverityCritical).
		WithMetadata(metadata)
}

// InvariantHandler is called when a commit hits an invariant violation.
// Handlers must not swallow the condition; the default aborts by panicking.
type InvariantHandler func(violation *InvariantViolation)

// PanicOnInvariantViolation is the default InvariantHandler.
func PanicOnInvariantViolation(violation *InvariantViolation) {
	panic(violation)
}
