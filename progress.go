package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// =============================================================================
// Progress Reporting
// =============================================================================

// progressReporter receives the batch position after each file.
type progressReporter interface {
	Start(total int)
	Update(done int)
	Finish()
}

// progressBar reports batch progress on a single terminal line:
//
//	Processing  50% |███████████████               | (12/24)
type progressBar struct {
	w     io.Writer
	width int
	bar   *progressbar.ProgressBar
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{w: w, width: 30}
}

// Start draws an empty bar. An empty batch draws nothing.
func (pb *progressBar) Start(total int) {
	pb.bar = nil
	if total <= 0 {
		return
	}
	pb.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pb.w),
		progressbar.OptionSetWidth(pb.width),
		progressbar.OptionSetDescription("Processing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (pb *progressBar) Update(done int) {
	if pb.bar == nil {
		return
	}
	_ = pb.bar.Set(done)
}

// Finish completes the bar and ends its line.
func (pb *progressBar) Finish() {
	if pb.bar == nil {
		return
	}
	_ = pb.bar.Finish()
	fmt.Fprintln(pb.w)
	pb.bar = nil
}

// nopProgress discards progress, used when output is not wanted.
type nopProgress struct{}

func (nopProgress) Start(int)  {}
func (nopProgress) Update(int) {}
func (nopProgress) Finish()    {}
