// Package util holds progress reporting helpers for batch operations.
package util

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/docker/go-units"
	"github.com/schollz/progressbar/v3"
)

const descriptionWidth = 48

// ProgressLogger renders a progress bar over file and byte counters
// for a batch operation. Counters are safe for concurrent updates;
// rendering happens on a background ticker until all files are done.
type ProgressLogger struct {
	action string
	total  int

	files atomic.Int32
	bytes atomic.Int64
}

// NewProgressLogger starts tracking a batch of total files. With
// total <= 0 no bar is rendered and the logger only counts.
func NewProgressLogger(total int, action string, interval time.Duration) *ProgressLogger {
	p := &ProgressLogger{action: action, total: total}
	if total > 0 {
		go p.render(interval)
	}
	return p
}

// UpdateBytes adds delta to the byte counter.
func (p *ProgressLogger) UpdateBytes(delta int64) {
	p.bytes.Add(delta)
}

// UpdateFiles adds delta to the file counter.
func (p *ProgressLogger) UpdateFiles(delta int32) {
	p.files.Add(delta)
}

// Snapshot returns the current file and byte counts.
func (p *ProgressLogger) Snapshot() (int64, int64) {
	return int64(p.files.Load()), p.bytes.Load()
}

func (p *ProgressLogger) render(interval time.Duration) {
	bar := progressbar.NewOptions(
		p.total,
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription(p.describe(0, 0)),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(28),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stdout)
		}),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[cyan]=",
			SaucerHead:    "[cyan]>",
			SaucerPadding: "[dark_gray]-",
			BarStart:      "[",
			BarEnd:        "][reset]",
		}),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var shownFiles int64
	var shownBytes int64
	for range ticker.C {
		files, bytes := p.Snapshot()

		bar.Describe(p.describe(bytes, bytes-shownBytes))
		if files > shownFiles {
			_ = bar.Add64(files - shownFiles)
		}
		shownFiles, shownBytes = files, bytes

		if int(files) >= p.total {
			_ = bar.Finish()
			return
		}
	}
}

// describe formats "action written (rate/s)", kept at a fixed width so
// the bar does not jump around as the numbers change.
func (p *ProgressLogger) describe(bytes, bytesDelta int64) string {
	desc := fmt.Sprintf(
		"%s %s (%s/s)",
		p.action,
		units.BytesSize(float64(bytes)),
		units.BytesSize(float64(bytesDelta)),
	)
	return fixWidth(desc, descriptionWidth)
}

func fixWidth(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return fmt.Sprintf("%-*s", width, s)
}
