package temporal

import (
	"fmt"
	"strings"
)

// TimeField names one of the four timestamps of a graph element.
type TimeField int

const (
	ValFrom TimeField = iota
	ValTo
	TxFrom
	TxTo
)

// Fields lists the four time fields in declaration order.
var Fields = []TimeField{ValFrom, ValTo, TxFrom, TxTo}

// IsStart reports whether f opens an interval (VAL_FROM, TX_FROM).
func (f TimeField) IsStart() bool {
	return f == ValFrom || f == TxFrom
}

func (f TimeField) String() string {
	switch f {
	case ValFrom:
		return "VAL_FROM"
	case ValTo:
		return "VAL_TO"
	case TxFrom:
		return "TX_FROM"
	case TxTo:
		return "TX_TO"
	default:
		return fmt.Sprintf("TimeField(%d)", int(f))
	}
}

// ParseField parses a field name case-insensitively:
// val_from, val_to, tx_from or tx_to.
func ParseField(s string) (TimeField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "val_from":
		return ValFrom, nil
	case "val_to":
		return ValTo, nil
	case "tx_from":
		return TxFrom, nil
	case "tx_to":
		return TxTo, nil
	default:
		return 0, fmt.Errorf("%w: the string %q can not be parsed to a time field", ErrInvalidField, s)
	}
}
