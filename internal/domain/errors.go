package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrClientHasRentals = errors.New("cannot delete client as they have existing rental records")
)

type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: start %s is after end %s", e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// ConflictError lists the requested items that are already booked in an overlapping interval.
type ConflictError struct {
	ItemIDs []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("items already booked during this period: %s", strings.Join(e.ItemIDs, ", "))
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps a failure of the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
