package store

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/tpgm/internal/temporal"
)

// Unbounded interval ends.
const (
	MinTime int64 = math.MinInt64
	MaxTime int64 = math.MaxInt64
)

// ErrNotFound is returned when an element id is not in the store.
var ErrNotFound = errors.New("element not found")

// Interval is a closed time interval in epoch milliseconds.
type Interval struct {
	From int64
	To   int64
}

// Unbounded returns the interval covering all of time.
func Unbounded() Interval {
	return Interval{From: MinTime, To: MaxTime}
}

// Validate reports an error when the interval ends before it starts.
func (i Interval) Validate() error {
	if i.From > i.To {
		return fmt.Errorf("interval [%d, %d] ends before it starts", i.From, i.To)
	}
	return nil
}

// Element is a vertex or edge of a temporal property graph.
type Element struct {
	ID         string
	Label      string
	Valid      Interval
	Tx         Interval
	Properties map[string]any
}

// Field returns the value of one of the element's time fields.
func (e Element) Field(f temporal.TimeField) int64 {
	switch f {
	case temporal.ValFrom:
		return e.Valid.From
	case temporal.ValTo:
		return e.Valid.To
	case temporal.TxFrom:
		return e.Tx.From
	default:
		return e.Tx.To
	}
}

// Binding binds a query variable to elements, optionally restricted to a
// label.
type Binding struct {
	Variable string
	Label    string
}

// Embedding maps each bound variable to the id of an element.
type Embedding map[string]string
