package allocation

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexran/nexran/internal/domain/kpm"
	"github.com/nexran/nexran/internal/domain/nexran"
	"github.com/nexran/nexran/internal/domain/slice"
	"github.com/nexran/nexran/internal/domain/zylinium"
)

// NodeBSpec describes a node to create.
type NodeBSpec struct {
	Type      slice.NodeBType `json:"type"`
	MCC       string          `json:"mcc"`
	MNC       string          `json:"mnc"`
	ID        int64           `json:"id"`
	IDLen     int             `json:"id_len"`
	TotalPRBs int64           `json:"total_prbs"`
}

// NodeBUpdate changes node configuration. Nil fields are left alone.
type NodeBUpdate struct {
	TotalPRBs *int64 `json:"total_prbs,omitempty"`
}

// AppConfig is the controller-wide configuration.
type AppConfig struct {
	KPMInterval   kpm.Period `json:"kpm_interval_index"`
	KPMIntervalMs int64      `json:"kpm_interval_ms"`
}

// AppConfigUpdate changes AppConfig. Nil fields are left alone.
type AppConfigUpdate struct {
	KPMInterval *int `json:"kpm_interval_index,omitempty"`
}

func (c *Controller) AppConfig() AppConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return AppConfig{KPMInterval: c.kpmPeriod, KPMIntervalMs: c.kpmPeriod.Milliseconds()}
}

// UpdateAppConfig applies upd. A new KPM interval resubscribes every node.
func (c *Controller) UpdateAppConfig(ctx context.Context, upd AppConfigUpdate) (AppConfig, uuid.UUID, error) {
	c.mu.Lock()
	var subs []subscription
	if upd.KPMInterval != nil {
		period, err := kpm.ParsePeriod(*upd.KPMInterval)
		if err != nil {
			c.mu.Unlock()
			return AppConfig{}, uuid.Nil, invalid(err)
		}
		if period != c.kpmPeriod {
			c.kpmPeriod = period
			for _, name := range sortedNames(c.nodebs) {
				subs = append(subs,
					subscription{endpoint: name, remove: c.kpmFunction},
					subscription{endpoint: name, request: c.kpmSubscriptionLocked()},
				)
			}
		}
	}
	cfg := AppConfig{KPMInterval: c.kpmPeriod, KPMIntervalMs: c.kpmPeriod.Milliseconds()}
	c.mu.Unlock()

	c.logger.Info().Int("kpm_interval_index", int(cfg.KPMInterval)).Int("resubscribed", len(subs)/2).Msg("app config updated")
	return cfg, c.dispatch(ctx, nil, subs), nil
}

func (c *Controller) ListNodeBs() []slice.NodeBView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]slice.NodeBView, 0, len(c.nodebs))
	for _, name := range sortedNames(c.nodebs) {
		out = append(out, c.nodebs[name].View())
	}
	return out
}

func (c *Controller) GetNodeB(name string) (slice.NodeBView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	nb, ok := c.nodebs[name]
	if !ok {
		return slice.NodeBView{}, notFound("nodeb", name)
	}
	return nb.View(), nil
}

// CreateNodeB registers a node and subscribes to its reports.
func (c *Controller) CreateNodeB(ctx context.Context, spec NodeBSpec) (slice.NodeBView, uuid.UUID, error) {
	if spec.TotalPRBs < 0 {
		return slice.NodeBView{}, uuid.Nil, newError(ErrInvalid, "total_prbs must not be negative")
	}
	nb, err := slice.NewNodeB(spec.Type, spec.MCC, spec.MNC, spec.ID, spec.IDLen)
	if err != nil {
		return slice.NodeBView{}, uuid.Nil, invalid(err)
	}
	nb.TotalPRBs = spec.TotalPRBs

	c.mu.Lock()
	if _, exists := c.nodebs[nb.Name]; exists {
		c.mu.Unlock()
		return slice.NodeBView{}, uuid.Nil, newError(ErrAlreadyExists, "nodeb %q already exists", nb.Name)
	}
	c.nodebs[nb.Name] = nb
	subs := []subscription{{endpoint: nb.Name, request: c.kpmSubscriptionLocked()}}
	if c.sliceStatus {
		subs = append(subs, subscription{endpoint: nb.Name, request: c.statusSubscriptionLocked()})
	}
	view := nb.View()
	c.mu.Unlock()

	c.logger.Info().Str("nodeb", nb.Name).Msg("nodeb created")
	c.publish(EventNodeB, view)
	return view, c.dispatch(ctx, nil, subs), nil
}

func (c *Controller) UpdateNodeB(name string, upd NodeBUpdate) (slice.NodeBView, error) {
	if upd.TotalPRBs != nil && *upd.TotalPRBs < 0 {
		return slice.NodeBView{}, newError(ErrInvalid, "total_prbs must not be negative")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	nb, ok := c.nodebs[name]
	if !ok {
		return slice.NodeBView{}, notFound("nodeb", name)
	}
	if upd.TotalPRBs != nil {
		nb.TotalPRBs = *upd.TotalPRBs
	}
	return nb.View(), nil
}

// DeleteNodeB removes a node and deletes every subscription it holds.
func (c *Controller) DeleteNodeB(ctx context.Context, name string) (uuid.UUID, error) {
	c.mu.Lock()
	if _, ok := c.nodebs[name]; !ok {
		c.mu.Unlock()
		return uuid.Nil, notFound("nodeb", name)
	}
	delete(c.nodebs, name)
	c.mu.Unlock()

	c.logger.Info().Str("nodeb", name).Msg("nodeb deleted")
	return c.dispatch(ctx, nil, []subscription{{endpoint: name, dropAll: true}}), nil
}

// BindSlice binds a slice to a node and pushes the slice's configuration and
// UE bindings to it.
func (c *Controller) BindSlice(ctx context.Context, nodeb, sliceName string) (slice.NodeBView, uuid.UUID, error) {
	c.mu.Lock()
	nb, ok := c.nodebs[nodeb]
	if !ok {
		c.mu.Unlock()
		return slice.NodeBView{}, uuid.Nil, notFound("nodeb", nodeb)
	}
	s, ok := c.slices[sliceName]
	if !ok {
		c.mu.Unlock()
		return slice.NodeBView{}, uuid.Nil, notFound("slice", sliceName)
	}
	if !nb.BindSlice(sliceName) {
		c.mu.Unlock()
		return slice.NodeBView{}, uuid.Nil, newError(ErrAlreadyExists, "slice %q already bound to nodeb %q", sliceName, nodeb)
	}
	controls := []outbound{{endpoint: nodeb, control: nexran.NewSliceConfig(s.Name, s.Policy.Share)}}
	if ues := s.UEs(); len(ues) > 0 {
		controls = append(controls, outbound{endpoint: nodeb, control: &nexran.SliceUEBindRequest{Slice: s.Name, IMSIs: ues}})
	}
	view := nb.View()
	c.mu.Unlock()

	return view, c.dispatch(ctx, controls, nil), nil
}

// UnbindSlice removes the slice from the node.
func (c *Controller) UnbindSlice(ctx context.Context, nodeb, sliceName string) (slice.NodeBView, uuid.UUID, error) {
	c.mu.Lock()
	nb, ok := c.nodebs[nodeb]
	if !ok {
		c.mu.Unlock()
		return slice.NodeBView{}, uuid.Nil, notFound("nodeb", nodeb)
	}
	if !nb.UnbindSlice(sliceName) {
		c.mu.Unlock()
		return slice.NodeBView{}, uuid.Nil, newError(ErrNotFound, "slice %q not bound to nodeb %q", sliceName, nodeb)
	}
	controls := []outbound{{endpoint: nodeb, control: &nexran.SliceDeleteRequest{Names: []string{sliceName}}}}
	view := nb.View()
	c.mu.Unlock()

	return view, c.dispatch(ctx, controls, nil), nil
}

// SetMask pushes a blocked resource mask to a node.
func (c *Controller) SetMask(ctx context.Context, nodeb string, mask zylinium.BlockedMask) (uuid.UUID, error) {
	if err := mask.Validate(); err != nil {
		return uuid.Nil, invalid(err)
	}
	c.mu.Lock()
	_, ok := c.nodebs[nodeb]
	c.mu.Unlock()
	if !ok {
		return uuid.Nil, notFound("nodeb", nodeb)
	}
	return c.dispatch(ctx, []outbound{{endpoint: nodeb, control: &zylinium.MaskConfigRequest{Mask: mask}}}, nil), nil
}

func (c *Controller) setConnected(nodeb string, connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if nb, ok := c.nodebs[nodeb]; ok {
		nb.Connected = connected
		if connected {
			nb.LastSeen = c.now()
		}
	}
}
