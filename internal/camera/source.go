// Package camera provides frame acquisition for the agent.
package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os/exec"
	"sync/atomic"
	"time"

	"lapsecam/internal/config"
)

// ErrEmptyFrame is returned when a source produces no image data.
var ErrEmptyFrame = errors.New("empty frame")

// jpegMagic is the JPEG SOI marker.
var jpegMagic = []byte{0xFF, 0xD8}

// Frame is a single captured JPEG.
type Frame struct {
	Bytes   []byte
	Origin  string
	TakenAt time.Time
}

// Source produces frames on demand.
type Source interface {
	Capture(ctx context.Context) (Frame, error)
}

// CommandSource shells out to a capture binary that writes a JPEG to stdout
// (libcamera-still -o -, fswebcam --save -, etc).
type CommandSource struct {
	command string
}

func NewCommandSource(command string) *CommandSource {
	return &CommandSource{command: command}
}

func (s *CommandSource) Capture(ctx context.Context) (Frame, error) {
	if s.command == "" {
		return Frame{}, errors.New("capture command not configured")
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", s.command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return Frame{}, fmt.Errorf("capture command: %w: %s", err, msg)
		}
		return Frame{}, fmt.Errorf("capture command: %w", err)
	}

	data := stdout.Bytes()
	if len(data) == 0 {
		return Frame{}, ErrEmptyFrame
	}
	if !bytes.HasPrefix(data, jpegMagic) {
		return Frame{}, fmt.Errorf("capture command produced %d bytes of non-JPEG output", len(data))
	}

	return Frame{Bytes: data, Origin: config.SourceCommand, TakenAt: time.Now().UTC()}, nil
}

// StubSource renders a synthetic gradient frame. Used in development and
// tests where no camera hardware is attached.
type StubSource struct {
	counter atomic.Uint64
}

func NewStubSource() *StubSource {
	return &StubSource{}
}

func (s *StubSource) Capture(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	n := s.counter.Add(1)
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			// Shift the gradient each capture so consecutive frames differ.
			img.SetGray(x, y, color.Gray{Y: uint8((x + y + int(n)) % 256)})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return Frame{}, fmt.Errorf("encode stub frame: %w", err)
	}

	return Frame{Bytes: buf.Bytes(), Origin: config.SourceStub, TakenAt: time.Now().UTC()}, nil
}
