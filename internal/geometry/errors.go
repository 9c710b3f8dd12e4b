package geometry

import (
	"errors"
	"fmt"

	"github.com/seenimoa/graphawesome/pkg/models"
)

// ErrDegenerateRange is matched by every DegenerateRangeError via errors.Is.
var ErrDegenerateRange = errors.New("degenerate value range")

// DegenerateRangeError reports input whose scaling or angle computation
// would divide by zero, e.g. a pie whose values sum to zero.
type DegenerateRangeError struct {
	Chart    models.ChartType
	Quantity string // what collapsed, e.g. "sum(ys)" or "x range"
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("%s chart: %s: %s", e.Chart, ErrDegenerateRange, e.Quantity)
}

// Is lets errors.Is(err, ErrDegenerateRange) match.
func (e *DegenerateRangeError) Is(target error) bool {
	return target == ErrDegenerateRange
}

func degenerate(chart models.ChartType, quantity string) error {
	return &DegenerateRangeError{Chart: chart, Quantity: quantity}
}
