package kpm

import "time"

// Window keeps the samples of the last period and their running totals.
// It is not safe for concurrent use; callers hold the owning slice's lock.
type Window struct {
	period  time.Duration
	clock   func() time.Time
	samples []Sample
	totals  Sample
}

func NewWindow(period time.Duration, clock func() time.Time) *Window {
	if clock == nil {
		clock = time.Now
	}
	return &Window{period: period, clock: clock}
}

func (w *Window) Add(s Sample) {
	w.samples = append(w.samples, s)
	w.totals.add(s)
	w.Flush()
}

// Flush evicts every sample older than now - period.
func (w *Window) Flush() {
	cutoff := w.clock().Add(-w.period)
	n := 0
	for n < len(w.samples) && w.samples[n].Time.Before(cutoff) {
		w.totals.sub(w.samples[n])
		n++
	}
	if n == 0 {
		return
	}
	if n == len(w.samples) {
		w.samples = w.samples[:0]
		w.totals = Sample{}
		return
	}
	w.samples = append(w.samples[:0], w.samples[n:]...)
}

// Current returns the most recently added sample.
func (w *Window) Current() (Sample, bool) {
	if len(w.samples) == 0 {
		return Sample{}, false
	}
	return w.samples[len(w.samples)-1], true
}

// Reset changes the window length and flushes.
func (w *Window) Reset(period time.Duration) {
	w.period = period
	w.Flush()
}

func (w *Window) TotalBytes() uint64 {
	return w.totals.TotalBytes()
}

func (w *Window) Totals() Sample {
	return w.totals
}

func (w *Window) Len() int {
	return len(w.samples)
}

func (w *Window) Period() time.Duration {
	return w.period
}
