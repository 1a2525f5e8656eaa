package booking

import "fmt"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// ActiveStatuses are the statuses that occupy a room.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown booking status %q", s)
	}
}

// Active reports whether the booking still blocks its time. REJECTED and CANCELLED are terminal.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}
