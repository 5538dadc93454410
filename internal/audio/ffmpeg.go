package audio

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrFFmpegNotFound is returned when ffmpeg is not installed
var ErrFFmpegNotFound = fmt.Errorf("ffmpeg not found in PATH")

func ffmpegPath() (string, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", ErrFFmpegNotFound
	}
	return path, nil
}

// FFmpegAvailable reports whether ffmpeg is installed
func FFmpegAvailable() bool {
	_, err := ffmpegPath()
	return err == nil
}

// ConvertToOpus re-encodes an audio file as low-bitrate opus suitable
// for a transcription upload. Returns the path of the new file; the
// caller removes it when done.
func ConvertToOpus(inputPath string) (string, error) {
	ffmpeg, err := ffmpegPath()
	if err != nil {
		return "", err
	}

	outputPath := strings.TrimSuffix(inputPath, ".wav") + ".opus"
	cmd := exec.Command(ffmpeg,
		"-y",
		"-i", inputPath,
		"-c:a", "libopus",
		"-b:a", "24k",
		"-application", "voip",
		outputPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg opus conversion failed: %w: %s", err, string(output))
	}
	return outputPath, nil
}

// AdjustSpeed re-encodes an MP3 clip at the given playback speed
// using ffmpeg's atempo filter. atempo only accepts factors in
// [0.5, 2.0], so larger adjustments are built by chaining filters.
func AdjustSpeed(data []byte, speed float64) ([]byte, error) {
	if speed == 1.0 {
		return data, nil
	}

	ffmpeg, err := ffmpegPath()
	if err != nil {
		return nil, err
	}

	filter, err := atempoChain(speed)
	if err != nil {
		return nil, err
	}

	inFile, err := os.CreateTemp("", "speed_in_*.mp3")
	if err != nil {
		return nil, err
	}
	defer os.Remove(inFile.Name())
	if _, err := inFile.Write(data); err != nil {
		inFile.Close()
		return nil, err
	}
	inFile.Close()

	outPath := inFile.Name() + ".out.mp3"
	defer os.Remove(outPath)

	cmd := exec.Command(ffmpeg,
		"-y",
		"-i", inFile.Name(),
		"-filter:a", filter,
		"-codec:a", "libmp3lame",
		"-b:a", "160k",
		outPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg speed adjustment failed: %w: %s", err, string(output))
	}

	return os.ReadFile(outPath)
}

// atempoChain builds a comma-separated atempo filter chain for the
// requested speed factor
func atempoChain(speed float64) (string, error) {
	if speed <= 0 {
		return "", fmt.Errorf("speed must be positive, got %v", speed)
	}

	var parts []string
	remaining := speed
	for remaining > 2.0 {
		parts = append(parts, "atempo=2.0")
		remaining /= 2.0
	}
	for remaining < 0.5 {
		parts = append(parts, "atempo=0.5")
		remaining /= 0.5
	}
	parts = append(parts, fmt.Sprintf("atempo=%g", remaining))
	return strings.Join(parts, ","), nil
}
