package servicemodel

import (
	"fmt"

	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/e2sm"
	"github.com/nexran/nexran/internal/domain/nexran"
)

type nexranHeaderWire struct {
	Operation string `codec:"op"`
}

type nexranTriggerWire struct {
	PeriodMs int64 `codec:"period_ms"`
}

type sliceNamesWire struct {
	Names []string `codec:"names"`
}

type sliceConfigsWire struct {
	Configs []sliceConfigWire `codec:"configs"`
}

type sliceConfigWire struct {
	Name  string `codec:"name"`
	Share int    `codec:"share"`
}

type ueBindingWire struct {
	Slice string   `codec:"slice"`
	IMSIs []string `codec:"imsis"`
}

type sliceStatusWire struct {
	Name  string   `codec:"name"`
	Share int      `codec:"share"`
	IMSIs []string `codec:"imsis"`
}

type sliceStatusReportWire struct {
	Statuses []sliceStatusWire `codec:"statuses"`
}

// NexRAN configures slices and binds UEs to them on a node.
type NexRAN struct {
	e2sm.Unimplemented
	s Serializer
}

func NewNexRAN(s Serializer) *NexRAN {
	return &NexRAN{s: s}
}

func (m *NexRAN) Name() string { return nexran.ModelName }

func (m *NexRAN) OID() string { return nexran.ModelOID }

func (m *NexRAN) FunctionID() e2ap.FunctionID { return FunctionNexRAN }

func (m *NexRAN) EncodeEventTrigger(trigger e2sm.EventTrigger) ([]byte, error) {
	t, ok := trigger.(*nexran.EventTrigger)
	if !ok {
		return nil, wrongModel(nexran.ModelName, trigger)
	}
	return m.s.Marshal(nexranTriggerWire{PeriodMs: t.PeriodMs})
}

func (m *NexRAN) EncodeControl(control e2sm.Control) (e2sm.EncodedControl, error) {
	var op nexran.Operation
	var body any
	switch c := control.(type) {
	case *nexran.SliceConfigRequest:
		w := sliceConfigsWire{Configs: make([]sliceConfigWire, 0, len(c.Configs))}
		for _, cfg := range c.Configs {
			w.Configs = append(w.Configs, sliceConfigWire{Name: cfg.Name, Share: cfg.Policy.Share})
		}
		op, body = c.Operation(), w
	case *nexran.SliceDeleteRequest:
		op, body = c.Operation(), sliceNamesWire{Names: c.Names}
	case *nexran.SliceStatusRequest:
		op, body = c.Operation(), sliceNamesWire{Names: c.Names}
	case *nexran.SliceUEBindRequest:
		op, body = c.Operation(), ueBindingWire{Slice: c.Slice, IMSIs: c.IMSIs}
	case *nexran.SliceUEUnbindRequest:
		op, body = c.Operation(), ueBindingWire{Slice: c.Slice, IMSIs: c.IMSIs}
	default:
		return e2sm.EncodedControl{}, wrongModel(nexran.ModelName, control)
	}
	header, err := m.s.Marshal(nexranHeaderWire{Operation: string(op)})
	if err != nil {
		return e2sm.EncodedControl{}, err
	}
	message, err := m.s.Marshal(body)
	if err != nil {
		return e2sm.EncodedControl{}, err
	}
	return e2sm.EncodedControl{Header: header, Message: message}, nil
}

// DecodeControl is the agent side of EncodeControl.
func (m *NexRAN) DecodeControl(header, message []byte) (e2sm.Control, error) {
	var h nexranHeaderWire
	if err := m.s.Unmarshal(header, &h); err != nil {
		return nil, fmt.Errorf("nexran header: %w", err)
	}
	switch nexran.Operation(h.Operation) {
	case nexran.OpSliceConfig:
		var w sliceConfigsWire
		if err := m.s.Unmarshal(message, &w); err != nil {
			return nil, err
		}
		req := &nexran.SliceConfigRequest{}
		for _, c := range w.Configs {
			req.Configs = append(req.Configs, nexran.SliceConfig{Name: c.Name, Policy: nexran.ProportionalPolicy{Share: c.Share}})
		}
		return req, nil
	case nexran.OpSliceDelete, nexran.OpSliceStatus:
		var w sliceNamesWire
		if err := m.s.Unmarshal(message, &w); err != nil {
			return nil, err
		}
		if nexran.Operation(h.Operation) == nexran.OpSliceDelete {
			return &nexran.SliceDeleteRequest{Names: w.Names}, nil
		}
		return &nexran.SliceStatusRequest{Names: w.Names}, nil
	case nexran.OpUEBind, nexran.OpUEUnbind:
		var w ueBindingWire
		if err := m.s.Unmarshal(message, &w); err != nil {
			return nil, err
		}
		if nexran.Operation(h.Operation) == nexran.OpUEBind {
			return &nexran.SliceUEBindRequest{Slice: w.Slice, IMSIs: w.IMSIs}, nil
		}
		return &nexran.SliceUEUnbindRequest{Slice: w.Slice, IMSIs: w.IMSIs}, nil
	default:
		return nil, fmt.Errorf("%w: nexran operation %q", e2ap.ErrMalformed, h.Operation)
	}
}

func (m *NexRAN) DecodeIndication(_ e2sm.EventTrigger, _, message []byte) (e2sm.Indication, error) {
	return m.decodeStatus(message)
}

// DecodeControlOutcome reads the slice status a node echoes after a control.
func (m *NexRAN) DecodeControlOutcome(_ e2sm.Control, outcome []byte) (e2sm.ControlOutcome, error) {
	return m.decodeStatus(outcome)
}

// EncodeStatus is the agent side of DecodeIndication.
func (m *NexRAN) EncodeStatus(report *nexran.SliceStatusReport) ([]byte, error) {
	w := sliceStatusReportWire{Statuses: make([]sliceStatusWire, 0, len(report.Statuses))}
	for _, s := range report.Statuses {
		w.Statuses = append(w.Statuses, sliceStatusWire{Name: s.Name, Share: s.Policy.Share, IMSIs: s.IMSIs})
	}
	return m.s.Marshal(w)
}

func (m *NexRAN) decodeStatus(data []byte) (*nexran.SliceStatusReport, error) {
	var w sliceStatusReportWire
	if err := m.s.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("nexran status: %w", err)
	}
	report := &nexran.SliceStatusReport{}
	for _, s := range w.Statuses {
		report.Statuses = append(report.Statuses, nexran.SliceStatus{
			Name:   s.Name,
			Policy: nexran.ProportionalPolicy{Share: s.Share},
			IMSIs:  s.IMSIs,
		})
	}
	return report, nil
}
