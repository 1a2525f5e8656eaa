package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyvision-booking/pkg/handlers/slogdiscard"
)

func newTestDetector(records ...Record) (*Detector, *memSource) {
	src := &memSource{records: records}
	return NewDetector(src, slogdiscard.NewDiscardLogger()), src
}

func TestDetectorScenarios(t *testing.T) {
	t.Parallel()

	approvedA101 := regularRecord("b-approved", "A-101", "2024-03-01", "09:00", "10:30", StatusApproved)
	rejectedA101 := regularRecord("b-rejected", "A-101", "2024-03-01", "09:00", "10:30", StatusRejected)
	bulkB202 := bulkRecord("b-bulk", "B-202", []string{"2024-03-01", "2024-03-08", "2024-03-15"}, "14:00", "15:00", StatusPending)

	tests := []struct {
		name         string
		records      []Record
		room, date   string
		start, end   string
		want         bool
		detailHas    []string
	}{
		{
			name:      "overlap with approved booking",
			records:   []Record{approvedA101},
			room:      "A-101", date: "2024-03-01", start: "10:00", end: "11:00",
			want:      true,
			detailHas: []string{"2024-03-01", "09:00", "10:30", "APPROVED", "b-approved"},
		},
		{
			name:    "touching boundary is free",
			records: []Record{approvedA101},
			room:    "A-101", date: "2024-03-01", start: "10:30", end: "11:00",
			want:    false,
		},
		{
			name:      "bulk booking blocks one of its dates",
			records:   []Record{bulkB202},
			room:      "B-202", date: "2024-03-08", start: "14:30", end: "14:45",
			want:      true,
			detailHas: []string{"2024-03-08", "PENDING", "bulk booking", "b-bulk"},
		},
		{
			name:    "bulk booking leaves other dates free",
			records: []Record{bulkB202},
			room:    "B-202", date: "2024-03-22", start: "14:30", end: "14:45",
			want:    false,
		},
		{
			name:    "rejected booking never blocks",
			records: []Record{rejectedA101},
			room:    "A-101", date: "2024-03-01", start: "09:00", end: "10:30",
			want:    false,
		},
		{
			name:    "other room is independent",
			records: []Record{approvedA101},
			room:    "A-102", date: "2024-03-01", start: "09:00", end: "10:30",
			want:    false,
		},
		{
			name:    "other date is independent",
			records: []Record{approvedA101},
			room:    "A-101", date: "2024-03-02", start: "09:00", end: "10:30",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, _ := newTestDetector(tt.records...)
			res, err := d.Check(context.Background(), tt.room, mustDate(t, tt.date), mustWindow(t, tt.start, tt.end), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.HasConflict)

			if !tt.want {
				assert.Empty(t, res.Detail)
				assert.Nil(t, res.Conflict)
				return
			}

			require.NotNil(t, res.Conflict)
			for _, s := range tt.detailHas {
				assert.Contains(t, res.Detail, s)
			}
		})
	}
}

func TestDetectorNoSelfConflictOnEdit(t *testing.T) {
	t.Parallel()

	existing := []Record{
		regularRecord("b-1", "A-101", "2024-03-01", "09:00", "10:30", StatusPending),
		bulkRecord("b-2", "A-101", []string{"2024-03-04", "2024-03-05"}, "09:00", "10:30", StatusApproved),
	}
	d, _ := newTestDetector(existing...)

	for _, rec := range existing {
		b, err := Decode(rec)
		require.NoError(t, err)

		for _, date := range b.Occupancy.Dates() {
			res, err := d.Check(context.Background(), rec.RoomID, date, b.Window, rec.ID)
			require.NoError(t, err)
			assert.False(t, res.HasConflict, "booking %s on %s", rec.ID, date)

			res, err = d.Check(context.Background(), rec.RoomID, date, b.Window, "")
			require.NoError(t, err)
			assert.True(t, res.HasConflict, "booking %s on %s without exclusion", rec.ID, date)
		}
	}
}

func TestDetectorBulkExpansionEquivalence(t *testing.T) {
	t.Parallel()

	bulk := bulkRecord("b-bulk", "C-303", []string{"2024-05-01", "2024-05-02", "2024-05-03"}, "09:00", "10:00", StatusApproved)
	d, _ := newTestDetector(bulk)
	w := mustWindow(t, "09:30", "09:45")

	res, err := d.Check(context.Background(), "C-303", mustDate(t, "2024-05-02"), w, "")
	require.NoError(t, err)
	assert.True(t, res.HasConflict)

	res, err = d.Check(context.Background(), "C-303", mustDate(t, "2024-05-04"), w, "")
	require.NoError(t, err)
	assert.False(t, res.HasConflict)

	// the same bulk booking split into regular bookings behaves identically
	var split []Record
	for i, s := range []string{"2024-05-01", "2024-05-02", "2024-05-03"} {
		split = append(split, regularRecord(string(rune('a'+i)), "C-303", s, "09:00", "10:00", StatusApproved))
	}
	ds, _ := newTestDetector(split...)

	for _, date := range []string{"2024-04-30", "2024-05-01", "2024-05-02", "2024-05-03", "2024-05-04"} {
		got, err := d.Check(context.Background(), "C-303", mustDate(t, date), w, "")
		require.NoError(t, err)
		want, err := ds.Check(context.Background(), "C-303", mustDate(t, date), w, "")
		require.NoError(t, err)
		assert.Equal(t, want.HasConflict, got.HasConflict, date)
	}
}

func TestDetectorTerminalStatusesNeverBlock(t *testing.T) {
	t.Parallel()

	for _, status := range []Status{StatusRejected, StatusCancelled} {
		// bypass the source filter to make sure the detector itself ignores terminal rows
		src := &rawSource{records: []Record{
			regularRecord("b-1", "A-101", "2024-03-01", "09:00", "10:30", status),
			bulkRecord("b-2", "A-101", []string{"2024-03-01"}, "09:00", "10:30", status),
		}}
		d := NewDetector(src, slogdiscard.NewDiscardLogger())

		res, err := d.Check(context.Background(), "A-101", mustDate(t, "2024-03-01"), mustWindow(t, "09:00", "10:30"), "")
		require.NoError(t, err)
		assert.False(t, res.HasConflict, status)
	}
}

func TestDetectorSkipsCorruptRecords(t *testing.T) {
	t.Parallel()

	corrupt := regularRecord("b-corrupt", "A-101", "2024-03-01", "09:00", "10:30", StatusApproved)
	corrupt.Purpose = "BULK_BOOKING:2024-03-01"
	valid := regularRecord("b-valid", "A-101", "2024-03-01", "13:00", "14:00", StatusApproved)

	d, _ := newTestDetector(corrupt, valid)

	res, err := d.Check(context.Background(), "A-101", mustDate(t, "2024-03-01"), mustWindow(t, "09:00", "10:00"), "")
	require.NoError(t, err)
	assert.False(t, res.HasConflict, "corrupt record must not produce phantom occupancy")

	res, err = d.Check(context.Background(), "A-101", mustDate(t, "2024-03-01"), mustWindow(t, "13:30", "15:00"), "")
	require.NoError(t, err)
	assert.True(t, res.HasConflict, "scan continues past corrupt record")
}

func TestDetectorStorageFailure(t *testing.T) {
	t.Parallel()

	src := &memSource{err: errors.New("connection refused")}
	d := NewDetector(src, slogdiscard.NewDiscardLogger())

	res, err := d.Check(context.Background(), "A-101", mustDate(t, "2024-03-01"), mustWindow(t, "09:00", "10:00"), "")
	require.Error(t, err)
	assert.False(t, res.HasConflict)
	assert.True(t, errors.Is(err, ErrConflictCheckFailed))

	var serr *StorageError
	assert.True(t, errors.As(err, &serr))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestDetectorRejectsInvalidWindowBeforeStorage(t *testing.T) {
	t.Parallel()

	d, src := newTestDetector()

	_, err := d.Check(context.Background(), "A-101", mustDate(t, "2024-03-01"), Window{Start: 600, End: 540}, "")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 0, src.calls)

	_, err = d.CheckDates(context.Background(), "A-101", nil, mustWindow(t, "09:00", "10:00"), "")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "dates", verr.Field)
}

func TestDetectorCheckDatesReportsFirstConflictingDate(t *testing.T) {
	t.Parallel()

	d, src := newTestDetector(
		regularRecord("b-1", "A-101", "2024-03-08", "09:00", "10:00", StatusApproved),
		regularRecord("b-2", "A-101", "2024-03-15", "09:00", "10:00", StatusPending),
	)

	dates := []Date{mustDate(t, "2024-03-01"), mustDate(t, "2024-03-08"), mustDate(t, "2024-03-15")}
	res, err := d.CheckDates(context.Background(), "A-101", dates, mustWindow(t, "09:30", "11:00"), "")
	require.NoError(t, err)
	require.True(t, res.HasConflict)
	assert.Equal(t, mustDate(t, "2024-03-08"), res.Conflict.Date)
	assert.Equal(t, "b-1", res.Conflict.BookingID)
	assert.Equal(t, 1, src.calls, "one snapshot for all dates")
}

func TestDetectorConflictsListsEveryBlocker(t *testing.T) {
	t.Parallel()

	d, _ := newTestDetector(
		regularRecord("b-1", "A-101", "2024-03-01", "08:00", "09:00", StatusApproved),
		regularRecord("b-2", "A-101", "2024-03-01", "09:00", "10:00", StatusPending),
		regularRecord("b-3", "A-101", "2024-03-01", "12:00", "13:00", StatusPending),
	)

	got, err := d.Conflicts(context.Background(), "A-101", mustDate(t, "2024-03-01"), mustWindow(t, "08:30", "12:00"), "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b-1", got[0].ID)
	assert.Equal(t, "b-2", got[1].ID)
}

func TestDetectorPreviewAgreesWithCheck(t *testing.T) {
	t.Parallel()

	d, src := newTestDetector(
		regularRecord("b-1", "A-101", "2024-03-01", "08:00", "09:00", StatusApproved),
		regularRecord("b-2", "A-101", "2024-03-01", "09:00", "10:00", StatusPending),
	)
	date, w := mustDate(t, "2024-03-01"), mustWindow(t, "08:30", "09:30")

	res, blocking, err := d.Preview(context.Background(), "A-101", date, w, "")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	require.Len(t, blocking, 2)
	require.True(t, res.HasConflict)
	assert.Equal(t, "b-1", res.Conflict.BookingID)

	check, err := d.Check(context.Background(), "A-101", date, w, "")
	require.NoError(t, err)
	assert.Equal(t, check.Detail, res.Detail)

	res, blocking, err = d.Preview(context.Background(), "A-101", date, mustWindow(t, "10:00", "11:00"), "")
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
	assert.Empty(t, blocking)
}

// rawSource returns records without any status filtering.
type rawSource struct {
	records []Record
}

func (r *rawSource) ActiveBookingsForRoom(_ context.Context, roomID, _ string) ([]Record, error) {
	var out []Record
	for _, rec := range r.records {
		if rec.RoomID == roomID {
			out = append(out, rec)
		}
	}
	return out, nil
}
