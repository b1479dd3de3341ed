package constant

import "testing"

// TestRecordingStatusForwardOnly checks the forward-only status machine with
// FAILED reachable from any non-complete state.
func TestRecordingStatusForwardOnly(t *testing.T) {
	cases := []struct {
		from, to RecordingStatus
		want     bool
	}{
		{RecordingStatusPending, RecordingStatusUploaded, true},
		{RecordingStatusUploaded, RecordingStatusProcessing, true},
		{RecordingStatusProcessing, RecordingStatusComplete, true},
		{RecordingStatusProcessing, RecordingStatusUploaded, false},
		{RecordingStatusComplete, RecordingStatusProcessing, false},
		{RecordingStatusComplete, RecordingStatusFailed, false},
		{RecordingStatusPending, RecordingStatusFailed, true},
		{RecordingStatusProcessing, RecordingStatusFailed, true},
		{RecordingStatusFailed, RecordingStatusProcessing, true},
		{RecordingStatusFailed, RecordingStatusComplete, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("%s -> %s = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestJobStatusActive(t *testing.T) {
	if !JobStatusPending.Active() || !JobStatusRunning.Active() {
		t.Fatal("pending and running are active")
	}
	if JobStatusCompleted.Active() || JobStatusFailed.Active() {
		t.Fatal("terminal statuses are not active")
	}
	if !JobStatusCompleted.Terminal() || !JobStatusFailed.Terminal() {
		t.Fatal("completed and failed are terminal")
	}
}
