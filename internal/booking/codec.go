package booking

import (
	"errors"
	"fmt"
	"strings"
)

// BulkTag prefixes the purpose field of bulk bookings:
//
//	BULK_BOOKING:<date1>,<date2>,...:<purpose>
//
// Stored data depends on this exact layout.
const BulkTag = "BULK_BOOKING"

var ErrMalformedEncoding = errors.New("malformed bulk booking encoding")

func FormatBulk(dates []Date, purpose string) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.String()
	}

	return BulkTag + ":" + strings.Join(parts, ",") + ":" + purpose
}

// ParsePurpose splits a stored purpose field. A field without the tag is a regular
// booking's purpose and is returned untouched. Only the first two colons separate
// segments, so the purpose may itself contain colons.
func ParsePurpose(field string) (dates []Date, purpose string, bulk bool, err error) {
	segments := strings.SplitN(field, ":", 3)
	if segments[0] != BulkTag {
		return nil, field, false, nil
	}

	if len(segments) < 3 {
		return nil, "", true, fmt.Errorf("%w: want 3 segments, got %d", ErrMalformedEncoding, len(segments))
	}

	if strings.TrimSpace(segments[1]) == "" {
		return nil, "", true, fmt.Errorf("%w: empty date list", ErrMalformedEncoding)
	}

	raw := strings.Split(segments[1], ",")
	dates = make([]Date, 0, len(raw))
	for _, s := range raw {
		d, err := ParseDate(strings.TrimSpace(s))
		if err != nil {
			return nil, "", true, fmt.Errorf("%w: bad date %q", ErrMalformedEncoding, s)
		}
		dates = append(dates, d)
	}

	return dates, segments[2], true, nil
}

// EncodePurpose produces the stored purpose field for an occupancy.
func EncodePurpose(occ Occupancy, purpose string) string {
	if b, ok := occ.(Bulk); ok {
		return FormatBulk(b.Days, purpose)
	}
	return purpose
}

// ValidatePurpose rejects human text that would be read back as a bulk encoding.
func ValidatePurpose(purpose string) error {
	if strings.TrimSpace(purpose) == "" {
		return &ValidationError{Field: "purpose", Reason: "must not be empty"}
	}
	if strings.HasPrefix(purpose, BulkTag+":") || purpose == BulkTag {
		return &ValidationError{Field: "purpose", Reason: fmt.Sprintf("must not start with %s", BulkTag)}
	}
	return nil
}
