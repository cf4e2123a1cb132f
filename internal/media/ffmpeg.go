// Package media wraps the ffmpeg/ffprobe binaries behind the collaborator
// contract the pipeline needs: audio extraction, muxing, metadata, the
// upload acceptance policy, and the silence utilities used for timing
// alignment.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

type FFmpeg struct {
	ffmpegBin  string
	ffprobeBin string
	log        *logrus.Logger
}

func NewFFmpeg(log *logrus.Logger) *FFmpeg {
	return &FFmpeg{ffmpegBin: "ffmpeg", ffprobeBin: "ffprobe", log: log}
}

// Metadata is the probed shape of a media file.
type Metadata struct {
	Duration  float64
	Format    string
	Width     int
	Height    int
	Codec     string
	Bitrate   int64
	SizeBytes int64
	HasAudio  bool
}

type probeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
		Size       string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// Probe reads container and stream metadata via ffprobe.
func (f *FFmpeg) Probe(ctx context.Context, path string) (*Metadata, error) {
	out, err := f.run(ctx, f.ffprobeBin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var po probeOutput
	if err := json.Unmarshal(out, &po); err != nil {
		return nil, fmt.Errorf("ffprobe output: %w", err)
	}

	m := &Metadata{}
	m.Duration, _ = strconv.ParseFloat(po.Format.Duration, 64)
	m.Bitrate, _ = strconv.ParseInt(po.Format.BitRate, 10, 64)
	m.SizeBytes, _ = strconv.ParseInt(po.Format.Size, 10, 64)
	if name, _, ok := strings.Cut(po.Format.FormatName, ","); ok {
		m.Format = name
	} else {
		m.Format = po.Format.FormatName
	}
	for _, s := range po.Streams {
		switch s.CodecType {
		case "video":
			if m.Codec == "" {
				m.Codec = s.CodecName
				m.Width = s.Width
				m.Height = s.Height
			}
		case "audio":
			m.HasAudio = true
		}
	}
	return m, nil
}

// ExtractAudio pulls the audio track as mono 16kHz PCM, the input format
// the transcription models expect.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, outPath string) error {
	_, err := f.run(ctx, f.ffmpegBin,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outPath,
	)
	if err != nil {
		return fmt.Errorf("extract audio from %s: %w", videoPath, err)
	}
	return nil
}

type MuxOptions struct {
	Watermark     bool
	WatermarkText string
}

// MuxAudioVideo replaces the video's audio track with the dubbed one. Video
// is stream-copied unless a watermark overlay forces a re-encode.
func (f *FFmpeg) MuxAudioVideo(ctx context.Context, videoPath, audioPath, outPath string, opts MuxOptions) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
	}
	if opts.Watermark {
		text := opts.WatermarkText
		if text == "" {
			text = "dubbed preview"
		}
		args = append(args,
			"-vf", fmt.Sprintf("drawtext=text='%s':x=10:y=H-th-10:fontsize=24:fontcolor=white@0.6", text),
			"-c:v", "libx264",
		)
	} else {
		args = append(args, "-c:v", "copy")
	}
	args = append(args,
		"-c:a", "aac",
		"-shortest",
		outPath,
	)

	_, err := f.run(ctx, f.ffmpegBin, args...)
	if err != nil {
		return fmt.Errorf("mux %s + %s: %w", videoPath, audioPath, err)
	}
	return nil
}

// run executes the binary, capturing stderr for error context. ffmpeg
// writes its diagnostics to stderr even on success, so stderr only becomes
// part of the error when the command fails.
func (f *FFmpeg) run(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		tail := stderr.String()
		if len(tail) > 512 {
			tail = tail[len(tail)-512:]
		}
		return nil, fmt.Errorf("%s: %w: %s", bin, err, tail)
	}
	return stdout.Bytes(), nil
}

// runStderr executes the binary and returns stderr, for filters like
// silencedetect that report through the log stream.
func (f *FFmpeg) runStderr(ctx context.Context, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stderr.String(), fmt.Errorf("%s: %w", bin, err)
	}
	return stderr.String(), nil
}
