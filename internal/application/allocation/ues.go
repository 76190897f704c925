package allocation

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexran/nexran/internal/domain/slice"
)

// UESpec describes a UE to create.
type UESpec struct {
	IMSI  string `json:"imsi"`
	TMSI  string `json:"tmsi"`
	CRNTI string `json:"crnti"`
}

// UEUpdate changes UE identifiers. Nil fields are left alone.
type UEUpdate struct {
	TMSI  *string `json:"tmsi,omitempty"`
	CRNTI *string `json:"crnti,omitempty"`
}

type UEView struct {
	slice.UE
	Slice string `json:"slice,omitempty"`
}

func (c *Controller) ueViewLocked(ue *slice.UE) UEView {
	return UEView{UE: *ue, Slice: c.ueSlice[ue.IMSI]}
}

func (c *Controller) ListUEs() []UEView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]UEView, 0, len(c.ues))
	for _, imsi := range sortedNames(c.ues) {
		out = append(out, c.ueViewLocked(c.ues[imsi]))
	}
	return out
}

func (c *Controller) GetUE(imsi string) (UEView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ue, ok := c.ues[imsi]
	if !ok {
		return UEView{}, notFound("ue", imsi)
	}
	return c.ueViewLocked(ue), nil
}

func (c *Controller) CreateUE(spec UESpec) (UEView, error) {
	ue, err := slice.NewUE(spec.IMSI, spec.TMSI)
	if err != nil {
		return UEView{}, invalid(err)
	}
	ue.CRNTI = spec.CRNTI

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.ues[ue.IMSI]; exists {
		return UEView{}, newError(ErrAlreadyExists, "ue %q already exists", ue.IMSI)
	}
	c.ues[ue.IMSI] = ue
	return c.ueViewLocked(ue), nil
}

func (c *Controller) UpdateUE(imsi string, upd UEUpdate) (UEView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ue, ok := c.ues[imsi]
	if !ok {
		return UEView{}, notFound("ue", imsi)
	}
	if upd.TMSI != nil {
		ue.TMSI = *upd.TMSI
	}
	if upd.CRNTI != nil {
		ue.CRNTI = *upd.CRNTI
	}
	return c.ueViewLocked(ue), nil
}

// DeleteUE removes a UE, unbinding it from its slice first.
func (c *Controller) DeleteUE(ctx context.Context, imsi string) (uuid.UUID, error) {
	c.mu.Lock()
	if _, ok := c.ues[imsi]; !ok {
		c.mu.Unlock()
		return uuid.Nil, notFound("ue", imsi)
	}
	var controls []outbound
	if sliceName, bound := c.ueSlice[imsi]; bound {
		var err error
		if _, controls, err = c.unbindUELocked(sliceName, imsi); err != nil {
			c.mu.Unlock()
			return uuid.Nil, err
		}
	}
	delete(c.ues, imsi)
	c.mu.Unlock()

	c.logger.Info().Str("imsi", imsi).Msg("ue deleted")
	return c.dispatch(ctx, controls, nil), nil
}
