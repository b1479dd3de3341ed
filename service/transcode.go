package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Containers the transcription provider is known to mishandle. Anything else
// is passed through untouched; this is a policy switch, not a correctness
// requirement.
var problematicMimeTypes = map[string]bool{
	"audio/webm":  true,
	"video/webm":  true,
	"audio/3gpp":  true,
	"audio/amr":   true,
	"audio/x-caf": true,
}

// NormalizeFunc converts an audio file into a provider-friendly format.
type NormalizeFunc func(ctx context.Context, inputPath, outputPath string) error

func NeedsNormalization(mimeType string) bool {
	base := mimeType
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	return problematicMimeTypes[strings.TrimSpace(strings.ToLower(base))]
}

// NormalizeAudio re-encodes to 16kHz mono WAV with ffmpeg.
func NormalizeAudio(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg execution failed: %w: %s", err, string(output))
	}
	return nil
}

func writeToFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	return f.Sync()
}
