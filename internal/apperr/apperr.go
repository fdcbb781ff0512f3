// Package apperr defines the error taxonomy shared by the storefront services.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to branch on it.
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindNotFound           Kind = "not_found"
	KindUnavailable        Kind = "unavailable"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindEmptyCart          Kind = "empty_cart"
	KindProductUnavailable Kind = "product_unavailable"
	KindConflict           Kind = "conflict"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindUnexpected         Kind = "unexpected"
)

// Error is a classified error with a human readable message.
type Error struct {
	Kind    Kind
	Message string
	// ProductID names the offending product for stock and availability failures.
	ProductID string
	Err       error
}

// Error implements the error interface for Error
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, apperr.EmptyCart("")) style checks work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind. A nil err returns nil.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func InvalidArgument(format string, args ...interface{}) error {
	return New(KindInvalidArgument, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return New(KindConflict, format, args...)
}

func Unauthorized(format string, args ...interface{}) error {
	return New(KindUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) error {
	return New(KindForbidden, format, args...)
}

// Unavailable reports a product that exists but cannot be sold right now.
func Unavailable(productID, name string) error {
	return &Error{
		Kind:      KindUnavailable,
		Message:   fmt.Sprintf("product %s is not available", name),
		ProductID: productID,
	}
}

// InsufficientStock reports a requested quantity above the available one.
func InsufficientStock(productID string, requested, available int) error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock (requested: %d, available: %d)", requested, available),
		ProductID: productID,
	}
}

// EmptyCart reports a checkout attempted against a cart without lines.
func EmptyCart(cartKey string) error {
	return &Error{Kind: KindEmptyCart, Message: fmt.Sprintf("cart %s is empty", cartKey)}
}

// ProductUnavailable is the checkout-time re-validation failure.
func ProductUnavailable(productID, name string) error {
	if name == "" {
		name = productID
	}
	return &Error{
		Kind:      KindProductUnavailable,
		Message:   fmt.Sprintf("product %s is not available or has insufficient stock", name),
		ProductID: productID,
	}
}

// Unexpected wraps an unclassified failure, typically from the data store.
func Unexpected(err error, format string, args ...interface{}) error {
	return Wrap(KindUnexpected, err, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ProductIDOf returns the product named by err, if any.
func ProductIDOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.ProductID
	}
	return ""
}
