package diarize

import (
	"worker-debrief/constant"
	"worker-debrief/entities"
)

// MergeResult carries the speaker labeling for exactly the segments that were
// submitted, whether or not the diarizer responded.
type MergeResult struct {
	SpeakerCount int
	Speakers     []string
	Segments     []entities.TranscriptSegment
}

// Fallback labels every segment with the single synthetic speaker. Used when
// the diarizer is unreachable, errors, or returns a mismatched segment count.
func Fallback(segments []entities.TranscriptSegment) MergeResult {
	merged := make([]entities.TranscriptSegment, len(segments))
	for i, seg := range segments {
		seg.Speaker = constant.FallbackSpeaker
		merged[i] = seg
	}
	return MergeResult{
		SpeakerCount: 1,
		Speakers:     []string{constant.FallbackSpeaker},
		Segments:     merged,
	}
}

// Merge attaches the diarizer's speaker labels index-by-index. Only the
// speaker label is taken from the response, never the text. A response with a
// different segment count would silently misalign speakers onto the wrong
// text, so it degrades to the fallback instead.
func Merge(segments []entities.TranscriptSegment, resp *Response) MergeResult {
	if resp == nil || len(resp.Segments) != len(segments) {
		return Fallback(segments)
	}

	merged := make([]entities.TranscriptSegment, len(segments))
	var speakers []string
	seen := map[string]bool{}
	for i, seg := range segments {
		speaker := resp.Segments[i].Speaker
		if speaker == "" {
			speaker = constant.FallbackSpeaker
		}
		seg.Speaker = speaker
		merged[i] = seg

		if !seen[speaker] {
			seen[speaker] = true
			speakers = append(speakers, speaker)
		}
	}

	return MergeResult{
		SpeakerCount: len(speakers),
		Speakers:     speakers,
		Segments:     merged,
	}
}
