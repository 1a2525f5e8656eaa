package booking

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// memSource serves records from memory and mimics the storage filters.
type memSource struct {
	records []Record
	err     error
	calls   int
}

func (m *memSource) ActiveBookingsForRoom(_ context.Context, roomID, excludeID string) ([]Record, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}

	var out []Record
	for _, r := range m.records {
		if r.RoomID != roomID || (excludeID != "" && r.ID == excludeID) {
			continue
		}
		if r.Status != string(StatusPending) && r.Status != string(StatusApproved) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memSource) ActiveRegularOn(_ context.Context, date Date) ([]Record, error) {
	if m.err != nil {
		return nil, m.err
	}

	var out []Record
	for _, r := range m.records {
		if strings.HasPrefix(r.Purpose, BulkTag) || r.AnchorDate != date {
			continue
		}
		if r.Status != string(StatusPending) && r.Status != string(StatusApproved) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memSource) ActiveBulk(_ context.Context) ([]Record, error) {
	if m.err != nil {
		return nil, m.err
	}

	var out []Record
	for _, r := range m.records {
		if !strings.HasPrefix(r.Purpose, BulkTag) {
			continue
		}
		if r.Status != string(StatusPending) && r.Status != string(StatusApproved) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	w, err := NewWindow(start, end)
	require.NoError(t, err)
	return w
}

func regularRecord(id, room, date, start, end string, status Status) Record {
	d, _ := ParseDate(date)
	return Record{
		ID:         id,
		RoomID:     room,
		RoomName:   room,
		UserID:     "user-1",
		AnchorDate: d,
		StartTime:  start,
		EndTime:    end,
		Purpose:    "Lecture",
		Status:     string(status),
	}
}

func bulkRecord(id, room string, dates []string, start, end string, status Status) Record {
	ds := make([]Date, 0, len(dates))
	for _, s := range dates {
		d, _ := ParseDate(s)
		ds = append(ds, d)
	}
	return Record{
		ID:         id,
		RoomID:     room,
		RoomName:   room,
		UserID:     "user-2",
		AnchorDate: ds[0],
		StartTime:  start,
		EndTime:    end,
		Purpose:    FormatBulk(ds, "Workshop"),
		Status:     string(status),
	}
}
