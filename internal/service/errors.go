package service

import (
	"errors"
	"fmt"
)

var (
	ErrPageNotFound       = errors.New("page not found")
	ErrStoreNotFound      = errors.New("store not found")
	ErrContextUnavailable = errors.New("store context unavailable")
	ErrValidation         = errors.New("validation failed")
	ErrSlugTaken          = errors.New("slug already used by another page of this store")
	ErrSystemPageDelete   = errors.New("system pages cannot be deleted")
)

type RenderFailureKind string

const (
	FailurePageNotFound  RenderFailureKind = "page_not_found"
	FailureStoreNotFound RenderFailureKind = "store_not_found"
	FailureFetch         RenderFailureKind = "fetch_failed"
	FailureBadSelector   RenderFailureKind = "invalid_selector"
)

// RenderFailure reports why a render call could not start. It affects only
// the call that produced it.
type RenderFailure struct {
	Kind     RenderFailureKind
	StoreID  string
	Selector string
	Err      error
}

func (f *RenderFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("render %s/%s: %s", f.StoreID, f.Selector, f.Kind)
	}
	return fmt.Sprintf("render %s/%s: %s: %v", f.StoreID, f.Selector, f.Kind, f.Err)
}

func (f *RenderFailure) Unwrap() error {
	return f.Err
}

// NotFound reports whether the failure means the page or store does not exist.
func (f *RenderFailure) NotFound() bool {
	return f.Kind == FailurePageNotFound || f.Kind == FailureStoreNotFound
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
