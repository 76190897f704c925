package allocation

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/nexran/nexran/internal/domain/kpm"
	"github.com/nexran/nexran/internal/domain/nexran"
	"github.com/nexran/nexran/internal/domain/slice"
	"github.com/nexran/nexran/internal/metrics"
)

const (
	// busyFraction of the fair per-slice PRB budget a slice must use before
	// equalization runs at all.
	busyFraction = 0.15
	// minFactor is the smallest relative share change worth sending.
	minFactor = 0.05
)

type adjustment struct {
	factor float64
	reason slice.Reason
}

// HandleReport runs one KPM report from nodeb through the controller and
// sends a slice config control to every node bound to each slice whose share
// changed.
func (c *Controller) HandleReport(ctx context.Context, nodeb string, report *kpm.Report) []slice.Decision {
	if report == nil {
		c.logger.Warn().Str("meid", nodeb).Msg("empty kpm report")
		return nil
	}
	metrics.RecordReport()
	if c.archive != nil {
		if err := c.archive.Record(ctx, nodeb, report); err != nil {
			c.logger.Warn().Err(err).Str("meid", nodeb).Msg("archiving kpm report failed")
		}
	}

	c.mu.Lock()
	if nb, ok := c.nodebs[nodeb]; ok {
		nb.LastSeen = c.now()
		nb.Connected = true
	}
	if len(report.Slices) == 0 {
		c.mu.Unlock()
		return nil
	}
	decisions := c.allocateLocked(report)
	controls := make([][]outbound, len(decisions))
	for i, d := range decisions {
		for _, nb := range d.NodeBs {
			controls[i] = append(controls[i], outbound{endpoint: nb, control: nexran.NewSliceConfig(d.Slice, d.NewShare)})
		}
	}
	c.mu.Unlock()

	for i := range decisions {
		if id := c.dispatch(ctx, controls[i], nil); id != uuid.Nil {
			decisions[i].RequestID = id.String()
		}
		d := decisions[i]
		metrics.RecordShareChange(string(d.Reason), d.Slice, d.NewShare)
		c.logger.Info().
			Str("slice", d.Slice).
			Str("reason", string(d.Reason)).
			Float64("factor", d.Factor).
			Int("old_share", d.OldShare).
			Int("new_share", d.NewShare).
			Strs("nodebs", d.NodeBs).
			Msg("share changed")
		c.publish(EventDecision, d)
	}
	return decisions
}

// allocateLocked feeds the report into every named slice's window, runs the
// throttling passes, then equalization, and applies the resulting factors.
func (c *Controller) allocateLocked(report *kpm.Report) []slice.Decision {
	now := c.now()
	adjust := map[string]adjustment{}

	var present []string
	for name, sample := range report.Slices {
		s, ok := c.slices[name]
		if !ok {
			continue
		}
		if sample.Time.IsZero() {
			sample.Time = now
		}
		s.Policy.AddSample(sample)
		present = append(present, name)
	}
	sort.Strings(present)

	names := sortedNames(c.slices)

	// Release or retarget slices already throttling.
	for _, name := range names {
		p := c.slices[name].Policy
		if !p.IsThrottling() {
			continue
		}
		p.Metrics().Flush()
		if share, ok := p.MaybeEndThrottling(); ok {
			adjust[name] = adjustment{shareFactor(p.Share, share), slice.ReasonThrottleEnd}
		} else if share, ok := p.MaybeUpdateThrottling(); ok {
			adjust[name] = adjustment{shareFactor(p.Share, share), slice.ReasonThrottleUpdate}
		}
	}

	// Start throttling where the window crossed its threshold.
	for _, name := range names {
		p := c.slices[name].Policy
		if _, done := adjust[name]; done || p.IsThrottling() || !p.Throttle {
			continue
		}
		if share, ok := p.MaybeStartThrottling(); ok {
			adjust[name] = adjustment{shareFactor(p.Share, share), slice.ReasonThrottleStart}
		}
	}

	c.equalizeLocked(report, present, adjust)

	var decisions []slice.Decision
	for _, name := range sortedNames(adjust) {
		a := adjust[name]
		if a.factor == 0 {
			continue
		}
		p := c.slices[name].Policy
		old := p.Share
		next := math.Round(math.Min(float64(old)+float64(old)*a.factor, slice.MaxShare))
		share := int(next)
		if share < slice.MinShare {
			share = slice.MinShare
		}
		if share == old {
			continue
		}
		p.SetShare(share)
		decisions = append(decisions, slice.Decision{
			Slice:    name,
			Reason:   a.reason,
			Factor:   a.factor,
			OldShare: old,
			NewShare: share,
			NodeBs:   c.nodebsForSliceLocked(name),
			Time:     now,
		})
	}
	return decisions
}

// equalizeLocked adds an auto-equalize factor for every eligible slice when
// the cell is busy enough. Slices with a throttling adjustment keep theirs.
func (c *Controller) equalizeLocked(report *kpm.Report, present []string, adjust map[string]adjustment) {
	var autoEq []string
	for _, name := range present {
		if c.slices[name].Policy.AutoEqualize {
			autoEq = append(autoEq, name)
		}
	}
	if len(autoEq) == 0 || report.AvailableDLPRBs <= 0 {
		return
	}
	fair := fairBudget(report, len(autoEq))
	if fair <= 0 {
		return
	}
	threshold := busyFraction * fair
	busy := false
	var total float64
	for _, name := range autoEq {
		sample := report.Slices[name]
		if float64(sample.DLPRBs) > threshold {
			busy = true
		}
		total += float64(sample.DLBytes)
	}
	if !busy {
		c.logger.Debug().Float64("threshold", threshold).Msg("cell not busy, skipping equalization")
		return
	}
	mean := total / float64(len(autoEq))
	for _, name := range autoEq {
		if _, has := adjust[name]; has {
			continue
		}
		if c.slices[name].Policy.IsThrottling() {
			continue
		}
		dl := float64(report.Slices[name].DLBytes)
		if dl == 0 {
			continue
		}
		factor := (mean - dl) / dl
		if math.Abs(factor) > minFactor {
			adjust[name] = adjustment{factor, slice.ReasonAutoEqualize}
		}
	}
}

// fairBudget is each auto-equalized slice's share of the downlink PRBs over
// the reporting period. AvailableDLPRBs is per TTI (1ms) while slice DLPRBs
// are totals for the period. A report without a period is taken as one TTI.
func fairBudget(report *kpm.Report, slices int) float64 {
	budget := float64(report.AvailableDLPRBs)
	if report.PeriodMs > 0 {
		budget *= float64(report.PeriodMs)
	}
	return budget / float64(slices)
}

func shareFactor(cur, next int) float64 {
	if cur == 0 {
		return 0
	}
	return float64(next-cur) / float64(cur)
}
