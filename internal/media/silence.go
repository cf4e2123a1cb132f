package media

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// SilenceWindow describes where speech actually sits inside an audio file.
type SilenceWindow struct {
	SpeechStart float64
	SpeechEnd   float64
	Total       float64
}

func (w SilenceWindow) LeadingSilence() float64  { return w.SpeechStart }
func (w SilenceWindow) TrailingSilence() float64 { return w.Total - w.SpeechEnd }

var (
	reSilenceStart = regexp.MustCompile(`silence_start: ([\d.]+)`)
	reSilenceEnd   = regexp.MustCompile(`silence_end: ([\d.]+)`)
)

// DetectSilence finds leading and trailing silence using ffmpeg's
// silencedetect filter. thresholdDB is the noise floor (e.g. -30); segments
// of at least 0.3s below it count as silence.
func (f *FFmpeg) DetectSilence(ctx context.Context, audioPath string, thresholdDB int) (*SilenceWindow, error) {
	m, err := f.Probe(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	stderr, err := f.runStderr(ctx, f.ffmpegBin,
		"-i", audioPath,
		"-af", fmt.Sprintf("silencedetect=noise=%ddB:d=0.3", thresholdDB),
		"-f", "null", "-",
	)
	if err != nil {
		return nil, fmt.Errorf("silencedetect %s: %w", audioPath, err)
	}

	w := parseSilence(stderr, m.Duration)
	return &w, nil
}

// parseSilence reads silencedetect output and keeps only silence anchored to
// the very start or the very end of the file. Interior pauses are speech
// rhythm, not padding.
func parseSilence(stderr string, total float64) SilenceWindow {
	w := SilenceWindow{SpeechStart: 0, SpeechEnd: total, Total: total}

	var starts, ends []float64
	for _, m := range reSilenceStart.FindAllStringSubmatch(stderr, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			starts = append(starts, v)
		}
	}
	for _, m := range reSilenceEnd.FindAllStringSubmatch(stderr, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			ends = append(ends, v)
		}
	}

	if len(starts) > 0 && starts[0] < 0.1 && len(ends) > 0 && ends[0] > 0.1 {
		w.SpeechStart = ends[0]
	}
	if len(starts) > 0 {
		last := starts[len(starts)-1]
		if last > total-3 && last > w.SpeechStart+1 {
			w.SpeechEnd = last
		}
	}
	return w
}

// AddSilence pads the audio with startPad seconds of leading and endPad
// seconds of trailing silence, aligning the dubbed track with where speech
// sat in the original.
func (f *FFmpeg) AddSilence(ctx context.Context, inPath, outPath string, startPad, endPad float64) error {
	if startPad < 0 {
		startPad = 0
	}
	if endPad < 0 {
		endPad = 0
	}

	filter := fmt.Sprintf("adelay=%d:all=1,apad=pad_dur=%.3f", int(startPad*1000), endPad)
	_, err := f.run(ctx, f.ffmpegBin,
		"-y",
		"-i", inPath,
		"-af", filter,
		outPath,
	)
	if err != nil {
		return fmt.Errorf("pad silence %s: %w", inPath, err)
	}
	return nil
}
