package allocation

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexran/nexran/internal/domain/nexran"
	"github.com/nexran/nexran/internal/domain/slice"
	"github.com/nexran/nexran/internal/metrics"
)

// SliceSpec describes a slice to create.
type SliceSpec struct {
	Name             string             `json:"name"`
	AllocationPolicy slice.PolicyConfig `json:"allocation_policy"`
}

func (c *Controller) ListSlices() []slice.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]slice.View, 0, len(c.slices))
	for _, name := range sortedNames(c.slices) {
		out = append(out, c.slices[name].View(c.nodebsForSliceLocked(name)))
	}
	return out
}

func (c *Controller) GetSlice(name string) (slice.View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slices[name]
	if !ok {
		return slice.View{}, notFound("slice", name)
	}
	return s.View(c.nodebsForSliceLocked(name)), nil
}

// CreateSlice adds an unbound slice. Nothing is sent until it is bound to a
// node.
func (c *Controller) CreateSlice(spec SliceSpec) (slice.View, error) {
	policy, err := slice.NewPolicy(spec.AllocationPolicy, c.now)
	if err != nil {
		return slice.View{}, invalid(err)
	}
	s, err := slice.NewSlice(spec.Name, policy)
	if err != nil {
		return slice.View{}, invalid(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.slices[s.Name]; exists {
		return slice.View{}, newError(ErrAlreadyExists, "slice %q already exists", s.Name)
	}
	c.slices[s.Name] = s
	metrics.SetSliceShare(s.Name, policy.Share)
	c.logger.Info().Str("slice", s.Name).Int("share", policy.Share).Msg("slice created")
	return s.View(nil), nil
}

// UpdateSlice applies cfg to the slice's policy. A share change is pushed to
// every node the slice is bound to.
func (c *Controller) UpdateSlice(ctx context.Context, name string, cfg slice.PolicyConfig) (slice.View, uuid.UUID, error) {
	c.mu.Lock()
	s, ok := c.slices[name]
	if !ok {
		c.mu.Unlock()
		return slice.View{}, uuid.Nil, notFound("slice", name)
	}
	old := s.Policy.Share
	if err := s.Policy.Update(cfg); err != nil {
		c.mu.Unlock()
		return slice.View{}, uuid.Nil, invalid(err)
	}
	nodebs := c.nodebsForSliceLocked(name)
	var controls []outbound
	if s.Policy.Share != old {
		metrics.SetSliceShare(name, s.Policy.Share)
		for _, nb := range nodebs {
			controls = append(controls, outbound{endpoint: nb, control: nexran.NewSliceConfig(name, s.Policy.Share)})
		}
	}
	view := s.View(nodebs)
	c.mu.Unlock()

	c.logger.Info().Str("slice", name).Int("old_share", old).Int("share", view.AllocationPolicy.Share).Msg("slice updated")
	return view, c.dispatch(ctx, controls, nil), nil
}

// DeleteSlice removes a slice, deleting it from every node it is bound to and
// releasing its UEs. The default slice cannot be deleted.
func (c *Controller) DeleteSlice(ctx context.Context, name string) (uuid.UUID, error) {
	if name == slice.DefaultSliceName {
		return uuid.Nil, newError(ErrConflict, "slice %q cannot be deleted", name)
	}
	c.mu.Lock()
	s, ok := c.slices[name]
	if !ok {
		c.mu.Unlock()
		return uuid.Nil, notFound("slice", name)
	}
	var controls []outbound
	for _, nb := range c.nodebsForSliceLocked(name) {
		c.nodebs[nb].UnbindSlice(name)
		controls = append(controls, outbound{endpoint: nb, control: &nexran.SliceDeleteRequest{Names: []string{name}}})
	}
	for _, imsi := range s.UEs() {
		delete(c.ueSlice, imsi)
	}
	delete(c.slices, name)
	c.mu.Unlock()

	metrics.DeleteSlice(name)
	c.logger.Info().Str("slice", name).Int("nodebs", len(controls)).Msg("slice deleted")
	return c.dispatch(ctx, controls, nil), nil
}

// BindUE adds a UE to a slice and tells every node the slice is bound to. A
// UE belongs to at most one slice.
func (c *Controller) BindUE(ctx context.Context, sliceName, imsi string) (slice.View, uuid.UUID, error) {
	c.mu.Lock()
	s, ok := c.slices[sliceName]
	if !ok {
		c.mu.Unlock()
		return slice.View{}, uuid.Nil, notFound("slice", sliceName)
	}
	if _, ok := c.ues[imsi]; !ok {
		c.mu.Unlock()
		return slice.View{}, uuid.Nil, notFound("ue", imsi)
	}
	if cur, bound := c.ueSlice[imsi]; bound {
		c.mu.Unlock()
		if cur == sliceName {
			return slice.View{}, uuid.Nil, newError(ErrAlreadyExists, "ue %q already bound to slice %q", imsi, sliceName)
		}
		return slice.View{}, uuid.Nil, newError(ErrConflict, "ue %q is bound to slice %q", imsi, cur)
	}
	s.BindUE(imsi)
	c.ueSlice[imsi] = sliceName
	nodebs := c.nodebsForSliceLocked(sliceName)
	controls := make([]outbound, 0, len(nodebs))
	for _, nb := range nodebs {
		controls = append(controls, outbound{endpoint: nb, control: &nexran.SliceUEBindRequest{Slice: sliceName, IMSIs: []string{imsi}}})
	}
	view := s.View(nodebs)
	c.mu.Unlock()

	return view, c.dispatch(ctx, controls, nil), nil
}

// UnbindUE removes a UE from a slice and tells every node the slice is bound
// to.
func (c *Controller) UnbindUE(ctx context.Context, sliceName, imsi string) (slice.View, uuid.UUID, error) {
	c.mu.Lock()
	view, controls, err := c.unbindUELocked(sliceName, imsi)
	c.mu.Unlock()
	if err != nil {
		return slice.View{}, uuid.Nil, err
	}
	return view, c.dispatch(ctx, controls, nil), nil
}

func (c *Controller) unbindUELocked(sliceName, imsi string) (slice.View, []outbound, error) {
	s, ok := c.slices[sliceName]
	if !ok {
		return slice.View{}, nil, notFound("slice", sliceName)
	}
	if !s.UnbindUE(imsi) {
		return slice.View{}, nil, newError(ErrNotFound, "ue %q not bound to slice %q", imsi, sliceName)
	}
	delete(c.ueSlice, imsi)
	nodebs := c.nodebsForSliceLocked(sliceName)
	controls := make([]outbound, 0, len(nodebs))
	for _, nb := range nodebs {
		controls = append(controls, outbound{endpoint: nb, control: &nexran.SliceUEUnbindRequest{Slice: sliceName, IMSIs: []string{imsi}}})
	}
	return s.View(nodebs), controls, nil
}
