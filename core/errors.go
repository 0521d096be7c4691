package core

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorCodeAssetNotHandled         = "NONFUNGIBLES_ASSET_NOT_HANDLED"
	ErrorCodeAccountConversionFailed = "NONFUNGIBLES_ACCOUNT_CONVERSION_FAILED"
	ErrorCodeNotDepositable          = "NONFUNGIBLES_NOT_DEPOSITABLE"
	ErrorCodeNotWithdrawable         = "NONFUNGIBLES_NOT_WITHDRAWABLE"
	ErrorCodeTransactionFailed       = "NONFUNGIBLES_TRANSACTION_FAILED"
	ErrorCodeInvariantViolation      = "NONFUNGIBLES_INVARIANT_VIOLATION"
	ErrorCodeListingUnsupported      = "NONFUNGIBLES_LISTING_UNSUPPORTED"
	ErrorCodeBadInput                = "NONFUNGIBLES_BAD_INPUT"
	ErrorCodeInternal                = "NONFUNGIBLES_INTERNAL_ERROR"
)

type ErrorMapper func(err error) *goerrors.Error

func AssetNotHandledError(what Asset) error {
	return nonfungiblesError(
		"core: asset not handled",
		goerrors.CategoryNotFound,
		http.StatusNotFound,
		ErrorCodeAssetNotHandled,
		map[string]any{"asset": what.String()},
	)
}

func AccountConversionFailedError(location Location) error {
	return nonfungiblesError(
		"core: account conversion failed",
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		ErrorCodeAccountConversionFailed,
		map[string]any{"location": location.String()},
	)
}

func NotDepositableError(ref ItemRef) error {
	return nonfungiblesError(
		"core: item is not depositable",
		goerrors.CategoryConflict,
		http.StatusConflict,
		ErrorCodeNotDepositable,
		itemMetadata(ref),
	)
}

func NotWithdrawableError(ref ItemRef) error {
	return nonfungiblesError(
		"core: item is not withdrawable",
		goerrors.CategoryConflict,
		http.StatusConflict,
		ErrorCodeNotWithdrawable,
		itemMetadata(ref),
	)
}

// TransactionFailedError wraps a ledger rejection. The ledger's reason stays
// reachable through errors.Unwrap.
func TransactionFailedError(reason error, ref ItemRef) error {
	if reason == nil {
		reason = fmt.Errorf("core: ledger rejected operation")
	}
	return goerrors.Wrap(reason, goerrors.CategoryOperation, "core: failed to transact asset").
		WithCode(http.StatusUnprocessableEntity).
		WithTextCode(ErrorCodeTransactionFailed).
		WithMetadata(itemMetadata(ref))
}

func ListingUnsupportedError() error {
	return nonfungiblesError(
		"core: ledger cannot list items by owner",
		goerrors.CategoryOperation,
		http.StatusNotImplemented,
		ErrorCodeListingUnsupported,
		nil,
	)
}

// FieldValidationError reports one invalid message field. scope prefixes
// the summary, e.g. "command" or "query".
func FieldValidationError(scope string, field string, message string) error {
	return goerrors.NewValidation(scope+": validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorCodeBadInput).
		WithSeverity(goerrors.SeverityError)
}

// DependencyError reports a handler built without its collaborator.
func DependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorCodeInternal)
}

func BadInputError(message string) error {
	return nonfungiblesError(message, goerrors.CategoryBadInput, http.StatusBadRequest, ErrorCodeBadInput, nil)
}

// IsCode reports whether any go-errors envelope in err's chain carries the
// given text code. Joined errors are searched branch by branch.
func IsCode(err error, code string) bool {
	for err != nil {
		if rich, ok := err.(*goerrors.Error); ok {
			if rich == nil {
				return false
			}
			if strings.TrimSpace(rich.TextCode) == code {
				return true
			}
		}
		switch unwrapped := err.(type) {
		case interface{ Unwrap() []error }:
			for _, branch := range unwrapped.Unwrap() {
				if IsCode(branch, code) {
					return true
				}
			}
			return false
		case interface{ Unwrap() error }:
			err = unwrapped.Unwrap()
		default:
			return false
		}
	}
	return false
}

func IsAssetNotHandled(err error) bool {
	return IsCode(err, ErrorCodeAssetNotHandled)
}

func nonfungiblesError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func itemMetadata(ref ItemRef) map[string]any {
	return map[string]any{
		"collection": string(ref.Collection),
		"item":       string(ref.Item),
	}
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && strings.TrimSpace(rich.TextCode) != "" {
		return rich.TextCode
	}
	return ErrorCodeInternal
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	if mapped.Code == 0 {
		mapped.Code = http.StatusInternalServerError
	}
	if strings.TrimSpace(mapped.TextCode) == "" {
		mapped.TextCode = ErrorCodeInternal
	}
	return mapped
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		mapper = defaultErrorMapper
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}
