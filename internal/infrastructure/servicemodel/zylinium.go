package servicemodel

import (
	"fmt"

	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/e2sm"
	"github.com/nexran/nexran/internal/domain/zylinium"
)

type maskWire struct {
	DLRBGMask string `codec:"dl_rbg_mask"`
	ULPRBMask string `codec:"ul_prb_mask"`
}

type zyliniumHeaderWire struct {
	Operation string `codec:"op"`
}

const (
	zyliniumOpConfig = "mask_config"
	zyliniumOpStatus = "mask_status"
)

// Zylinium applies resource block masks on a node.
type Zylinium struct {
	e2sm.Unimplemented
	s Serializer
}

func NewZylinium(s Serializer) *Zylinium {
	return &Zylinium{s: s}
}

func (m *Zylinium) Name() string { return zylinium.ModelName }

func (m *Zylinium) OID() string { return zylinium.ModelOID }

func (m *Zylinium) FunctionID() e2ap.FunctionID { return FunctionZylinium }

func (m *Zylinium) EncodeEventTrigger(trigger e2sm.EventTrigger) ([]byte, error) {
	if _, ok := trigger.(*zylinium.EventTrigger); !ok {
		return nil, wrongModel(zylinium.ModelName, trigger)
	}
	return m.s.Marshal(map[string]any{})
}

func (m *Zylinium) EncodeControl(control e2sm.Control) (e2sm.EncodedControl, error) {
	var op string
	var body maskWire
	switch c := control.(type) {
	case *zylinium.MaskConfigRequest:
		if err := c.Mask.Validate(); err != nil {
			return e2sm.EncodedControl{}, err
		}
		op, body = zyliniumOpConfig, maskWire(c.Mask)
	case *zylinium.MaskStatusRequest:
		op = zyliniumOpStatus
	default:
		return e2sm.EncodedControl{}, wrongModel(zylinium.ModelName, control)
	}
	header, err := m.s.Marshal(zyliniumHeaderWire{Operation: op})
	if err != nil {
		return e2sm.EncodedControl{}, err
	}
	message, err := m.s.Marshal(body)
	if err != nil {
		return e2sm.EncodedControl{}, err
	}
	return e2sm.EncodedControl{Header: header, Message: message}, nil
}

func (m *Zylinium) DecodeIndication(_ e2sm.EventTrigger, _, message []byte) (e2sm.Indication, error) {
	mask, err := m.decodeMask(message)
	if err != nil {
		return nil, err
	}
	return &zylinium.MaskStatusIndication{Mask: mask}, nil
}

func (m *Zylinium) DecodeControlOutcome(_ e2sm.Control, outcome []byte) (e2sm.ControlOutcome, error) {
	mask, err := m.decodeMask(outcome)
	if err != nil {
		return nil, err
	}
	return &zylinium.MaskStatusOutcome{Mask: mask}, nil
}

// EncodeMask is the agent side of the mask status bodies.
func (m *Zylinium) EncodeMask(mask zylinium.BlockedMask) ([]byte, error) {
	return m.s.Marshal(maskWire(mask))
}

func (m *Zylinium) decodeMask(data []byte) (zylinium.BlockedMask, error) {
	var w maskWire
	if err := m.s.Unmarshal(data, &w); err != nil {
		return zylinium.BlockedMask{}, fmt.Errorf("zylinium mask: %w", err)
	}
	mask := zylinium.BlockedMask(w)
	if err := mask.Validate(); err != nil {
		return zylinium.BlockedMask{}, err
	}
	return mask, nil
}
