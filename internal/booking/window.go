package booking

import "fmt"

// Window is a half-open time-of-day range [Start, End) applied to every occupied date.
type Window struct {
	Start Clock
	End   Clock
}

// FullDay covers a whole calendar date.
var FullDay = Window{Start: 0, End: EndOfDay}

func NewWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, &ValidationError{Field: "start_time", Reason: fmt.Sprintf("%q is not a HH:MM time", start)}
	}

	e, err := ParseClock(end)
	if err != nil {
		return Window{}, &ValidationError{Field: "end_time", Reason: fmt.Sprintf("%q is not a HH:MM time", end)}
	}

	w := Window{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}

	return w, nil
}

// Validate rejects empty, inverted and overnight windows.
func (w Window) Validate() error {
	if w.Start < 0 || w.Start >= EndOfDay {
		return &ValidationError{Field: "start_time", Reason: "must be between 00:00 and 23:59"}
	}
	if w.End <= 0 || w.End > EndOfDay {
		return &ValidationError{Field: "end_time", Reason: "must be between 00:01 and 24:00"}
	}
	if w.Start >= w.End {
		return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	return nil
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}

// Overlaps reports whether two half-open windows intersect.
// Windows that only touch at a boundary do not overlap.
func Overlaps(a, b Window) bool {
	return a.Start < b.End && b.Start < a.End
}
