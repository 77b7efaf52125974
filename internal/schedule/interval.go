package schedule

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidInterval = errors.New("interval start must be before end")

// Interval полуоткрытый промежуток времени [Start, End)
type Interval struct {
	Start time.Time `json:"startTime"`
	End   time.Time `json:"endTime"`
}

// NewInterval создаёт интервал и проверяет что start < end
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: %s - %s", ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// FromDuration создаёт интервал [start, start+minutes)
func FromDuration(start time.Time, minutes int) (Interval, error) {
	return NewInterval(start, start.Add(time.Duration(minutes)*time.Minute))
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов.
// Соседние интервалы [a,b) и [b,c) не пересекаются.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i, other)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) String() string {
	return "[" + i.Start.Format(time.RFC3339) + ", " + i.End.Format(time.RFC3339) + ")"
}

// AnyOverlap возвращает true если candidate пересекается хотя бы с одним интервалом
func AnyOverlap(candidate Interval, intervals []Interval) bool {
	for _, iv := range intervals {
		if Overlaps(candidate, iv) {
			return true
		}
	}
	return false
}
