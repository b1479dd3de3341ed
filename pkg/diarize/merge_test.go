package diarize

import (
	"testing"

	"worker-debrief/constant"
	"worker-debrief/entities"
)

func sampleSegments() []entities.TranscriptSegment {
	return []entities.TranscriptSegment{
		{StartSec: 0, EndSec: 2.5, Text: "hello there"},
		{StartSec: 2.5, EndSec: 5.0, Text: "hi, how are you"},
		{StartSec: 5.0, EndSec: 8.2, Text: "doing well"},
	}
}

// TestFallbackLabelsEverySegment checks the single-speaker degradation path.
func TestFallbackLabelsEverySegment(t *testing.T) {
	segs := sampleSegments()
	result := Fallback(segs)

	if result.SpeakerCount != 1 {
		t.Fatalf("speaker count = %d, want 1", result.SpeakerCount)
	}
	if len(result.Segments) != len(segs) {
		t.Fatalf("segment count = %d, want %d", len(result.Segments), len(segs))
	}
	for i, seg := range result.Segments {
		if seg.Speaker != constant.FallbackSpeaker {
			t.Fatalf("segment %d speaker = %q, want %q", i, seg.Speaker, constant.FallbackSpeaker)
		}
		if seg.Text != segs[i].Text {
			t.Fatalf("segment %d text changed: %q", i, seg.Text)
		}
	}
}

// TestMergeTakesOnlySpeakerLabels verifies index alignment and that text is
// never taken from the diarizer.
func TestMergeTakesOnlySpeakerLabels(t *testing.T) {
	segs := sampleSegments()
	resp := &Response{
		Speakers:    []string{"user", "speaker_1"},
		NumSpeakers: 2,
		Segments: []ResponseSegment{
			{Speaker: "user", Text: "garbled"},
			{Speaker: "speaker_1", Text: "garbled"},
			{Speaker: "user", Text: "garbled"},
		},
	}

	result := Merge(segs, resp)
	if result.SpeakerCount != 2 {
		t.Fatalf("speaker count = %d, want 2", result.SpeakerCount)
	}
	want := []string{"user", "speaker_1", "user"}
	for i, seg := range result.Segments {
		if seg.Speaker != want[i] {
			t.Fatalf("segment %d speaker = %q, want %q", i, seg.Speaker, want[i])
		}
		if seg.Text != segs[i].Text {
			t.Fatalf("segment %d text = %q, want original %q", i, seg.Text, segs[i].Text)
		}
	}
}

// TestMergeLengthMismatchFallsBack ensures a mismatched response cannot
// misalign speakers onto the wrong text.
func TestMergeLengthMismatchFallsBack(t *testing.T) {
	segs := sampleSegments()
	resp := &Response{
		Segments: []ResponseSegment{
			{Speaker: "user"},
			{Speaker: "speaker_1"},
		},
	}

	result := Merge(segs, resp)
	if result.SpeakerCount != 1 {
		t.Fatalf("speaker count = %d, want fallback 1", result.SpeakerCount)
	}
	for _, seg := range result.Segments {
		if seg.Speaker != constant.FallbackSpeaker {
			t.Fatalf("speaker = %q, want fallback", seg.Speaker)
		}
	}
}

// TestMergeAlwaysReturnsSameSegmentCount is the length-idempotence property:
// N segments in, N labeled segments out, response or not.
func TestMergeAlwaysReturnsSameSegmentCount(t *testing.T) {
	segs := sampleSegments()
	cases := []*Response{
		nil,
		{},
		{Segments: []ResponseSegment{{Speaker: "a"}}},
		{Segments: []ResponseSegment{{Speaker: "a"}, {Speaker: "b"}, {Speaker: "a"}}},
	}
	for i, resp := range cases {
		result := Merge(segs, resp)
		if len(result.Segments) != len(segs) {
			t.Fatalf("case %d: segment count = %d, want %d", i, len(result.Segments), len(segs))
		}
	}
}

// TestMergeEmptySpeakerUsesFallbackLabel covers a response row with no label.
func TestMergeEmptySpeakerUsesFallbackLabel(t *testing.T) {
	segs := sampleSegments()
	resp := &Response{
		Segments: []ResponseSegment{
			{Speaker: "user"},
			{Speaker: ""},
			{Speaker: "user"},
		},
	}

	result := Merge(segs, resp)
	if result.Segments[1].Speaker != constant.FallbackSpeaker {
		t.Fatalf("segment 1 speaker = %q, want fallback", result.Segments[1].Speaker)
	}
	if result.SpeakerCount != 2 {
		t.Fatalf("speaker count = %d, want 2", result.SpeakerCount)
	}
}
