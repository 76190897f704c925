package slice

import (
	"math"
	"strings"
	"time"

	"github.com/nexran/nexran/internal/domain/kpm"
)

const (
	MinShare              = 64
	MaxShare              = 1024
	DefaultShare          = 512
	DefaultThrottleShare  = 128
	DefaultThrottlePeriod = 1800 * time.Second
)

// PolicyType is the only allocation policy nodes understand today.
const PolicyType = "proportional"

// ValidationError collects every problem found in a request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(msg string) {
	e.Problems = append(e.Problems, msg)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// PolicyConfig carries policy fields from the northbound API. A nil field
// leaves the current value alone.
type PolicyConfig struct {
	Type              string `json:"type,omitempty"`
	Share             *int   `json:"share,omitempty"`
	AutoEqualize      *bool  `json:"auto_equalize,omitempty"`
	Throttle          *bool  `json:"throttle,omitempty"`
	ThrottleThreshold *int64 `json:"throttle_threshold,omitempty"`
	ThrottlePeriod    *int64 `json:"throttle_period,omitempty"`
	ThrottleShare     *int   `json:"throttle_share,omitempty"`
	ThrottleTarget    *int64 `json:"throttle_target,omitempty"`
}

func (c PolicyConfig) Validate() error {
	verr := &ValidationError{}
	if c.Type != "" && c.Type != PolicyType {
		verr.add("allocation_policy type must be " + PolicyType)
	}
	if c.Share != nil && (*c.Share < MinShare || *c.Share > MaxShare) {
		verr.add("share must be between 64 and 1024")
	}
	if c.ThrottlePeriod != nil && *c.ThrottlePeriod <= 0 {
		verr.add("throttle_period must be positive")
	}
	if c.ThrottleShare != nil && *c.ThrottleShare != 0 && (*c.ThrottleShare < MinShare || *c.ThrottleShare > MaxShare) {
		verr.add("throttle_share must be 0 or between 64 and 1024")
	}
	if c.ThrottleTarget != nil && *c.ThrottleTarget < 0 {
		verr.add("throttle_target must not be negative")
	}
	return verr.orNil()
}

// Policy is a slice's proportional allocation policy together with its
// throttling state and metrics window. Callers serialize access.
type Policy struct {
	Share             int
	AutoEqualize      bool
	Throttle          bool
	ThrottleThreshold int64
	ThrottlePeriod    time.Duration
	ThrottleShare     int
	ThrottleTarget    int64

	throttling  bool
	throttleEnd time.Time
	savedShare  int
	metrics     *kpm.Window
	clock       func() time.Time
}

func NewPolicy(cfg PolicyConfig, clock func() time.Time) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}
	p := &Policy{
		Share:          DefaultShare,
		ThrottlePeriod: DefaultThrottlePeriod,
		clock:          clock,
	}
	p.apply(cfg)
	p.metrics = kpm.NewWindow(p.ThrottlePeriod, clock)
	return p, nil
}

// DefaultPolicy is the policy of a slice created without one.
func DefaultPolicy(clock func() time.Time) *Policy {
	p, _ := NewPolicy(PolicyConfig{}, clock)
	return p
}

// Update validates cfg and applies it. Changing the throttle period resizes
// the metrics window.
func (p *Policy) Update(cfg PolicyConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	period := p.ThrottlePeriod
	p.apply(cfg)
	if p.ThrottlePeriod != period {
		p.metrics.Reset(p.ThrottlePeriod)
	}
	return nil
}

func (p *Policy) apply(cfg PolicyConfig) {
	if cfg.Share != nil {
		p.Share = *cfg.Share
	}
	if cfg.AutoEqualize != nil {
		p.AutoEqualize = *cfg.AutoEqualize
	}
	if cfg.Throttle != nil {
		p.Throttle = *cfg.Throttle
	}
	if cfg.ThrottleThreshold != nil {
		p.ThrottleThreshold = *cfg.ThrottleThreshold
	}
	if cfg.ThrottlePeriod != nil {
		p.ThrottlePeriod = time.Duration(*cfg.ThrottlePeriod) * time.Second
	}
	if cfg.ThrottleShare != nil {
		p.ThrottleShare = *cfg.ThrottleShare
	}
	if cfg.ThrottleTarget != nil {
		p.ThrottleTarget = *cfg.ThrottleTarget
	}
	// Throttling always needs a share or a target to drive it.
	if p.ThrottleShare == 0 && p.ThrottleTarget == 0 {
		p.ThrottleShare = DefaultThrottleShare
	}
}

func (p *Policy) SetShare(share int) {
	p.Share = ClampShare(share)
}

func (p *Policy) Metrics() *kpm.Window {
	return p.metrics
}

func (p *Policy) AddSample(s kpm.Sample) {
	p.metrics.Add(s)
}

func (p *Policy) IsThrottling() bool {
	return p.throttling
}

// MaybeStartThrottling begins throttling when the window's byte total exceeds
// the threshold, returning the share to apply.
func (p *Policy) MaybeStartThrottling() (int, bool) {
	if !p.Throttle || p.throttling || p.ThrottleThreshold <= 0 {
		return 0, false
	}
	p.metrics.Flush()
	if p.metrics.TotalBytes() <= uint64(p.ThrottleThreshold) {
		return 0, false
	}
	share, ok := p.throttledShare()
	if !ok {
		return 0, false
	}
	p.savedShare = p.Share
	p.throttling = true
	p.throttleEnd = p.clock().Add(p.ThrottlePeriod)
	return share, true
}

// MaybeUpdateThrottling recomputes a target-driven share while throttling.
func (p *Policy) MaybeUpdateThrottling() (int, bool) {
	if !p.Throttle || !p.throttling || p.ThrottleShare > 0 || p.ThrottleTarget <= 0 {
		return 0, false
	}
	share, ok := p.throttledShare()
	if !ok || share == p.Share {
		return 0, false
	}
	return share, true
}

// MaybeEndThrottling returns the saved share once the throttle period has
// elapsed, or immediately if throttling was switched off.
func (p *Policy) MaybeEndThrottling() (int, bool) {
	if !p.throttling {
		return 0, false
	}
	if p.Throttle && p.clock().Before(p.throttleEnd) {
		return 0, false
	}
	share := p.savedShare
	p.throttling = false
	p.throttleEnd = time.Time{}
	p.savedShare = 0
	return share, true
}

func (p *Policy) throttledShare() (int, bool) {
	if p.ThrottleShare > 0 {
		return p.ThrottleShare, true
	}
	if p.ThrottleTarget <= 0 {
		return 0, false
	}
	cur, ok := p.metrics.Current()
	if !ok || cur.TotalBytes() == 0 {
		return 0, false
	}
	ratio := float64(cur.TotalBytes()) / float64(p.ThrottleTarget)
	return ClampShare(int(math.Round(float64(p.Share) / ratio))), true
}

// ClampShare limits share to [MinShare, MaxShare].
func ClampShare(share int) int {
	if share < MinShare {
		return MinShare
	}
	if share > MaxShare {
		return MaxShare
	}
	return share
}

// PolicyView is the display form of a policy.
type PolicyView struct {
	Type              string     `json:"type"`
	Share             int        `json:"share"`
	AutoEqualize      bool       `json:"auto_equalize"`
	Throttle          bool       `json:"throttle"`
	ThrottleThreshold int64      `json:"throttle_threshold"`
	ThrottlePeriod    int64      `json:"throttle_period"`
	ThrottleShare     int        `json:"throttle_share"`
	ThrottleTarget    int64      `json:"throttle_target"`
	Throttling        bool       `json:"throttling"`
	ThrottleEnd       *time.Time `json:"throttle_end,omitempty"`
	SavedShare        int        `json:"throttle_saved_share,omitempty"`
	WindowBytes       uint64     `json:"window_bytes"`
	WindowSamples     int        `json:"window_samples"`
}

func (p *Policy) View() PolicyView {
	v := PolicyView{
		Type:              PolicyType,
		Share:             p.Share,
		AutoEqualize:      p.AutoEqualize,
		Throttle:          p.Throttle,
		ThrottleThreshold: p.ThrottleThreshold,
		ThrottlePeriod:    int64(p.ThrottlePeriod / time.Second),
		ThrottleShare:     p.ThrottleShare,
		ThrottleTarget:    p.ThrottleTarget,
		Throttling:        p.throttling,
		WindowBytes:       p.metrics.TotalBytes(),
		WindowSamples:     p.metrics.Len(),
	}
	if p.throttling {
		end := p.throttleEnd
		v.ThrottleEnd = &end
		v.SavedShare = p.savedShare
	}
	return v
}
