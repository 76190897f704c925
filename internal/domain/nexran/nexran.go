// Package nexran defines the slice-configuration service model payloads.
package nexran

const (
	ModelName = "ORAN-E2SM-NEXRAN"
	ModelOID  = "1.3.6.1.4.1.1.1.2.100"
)

// ProportionalPolicy is the share a node applies to a slice.
type ProportionalPolicy struct {
	Share int `json:"share"`
}

type SliceConfig struct {
	Name   string             `json:"name"`
	Policy ProportionalPolicy `json:"policy"`
}

type SliceStatus struct {
	Name   string             `json:"name"`
	Policy ProportionalPolicy `json:"policy"`
	IMSIs  []string           `json:"imsis"`
}

// Operation names the control a request carries.
type Operation string

const (
	OpSliceConfig Operation = "slice_config"
	OpSliceDelete Operation = "slice_delete"
	OpSliceStatus Operation = "slice_status"
	OpUEBind      Operation = "slice_ue_bind"
	OpUEUnbind    Operation = "slice_ue_unbind"
)

type SliceConfigRequest struct {
	Configs []SliceConfig
}

type SliceDeleteRequest struct {
	Names []string
}

type SliceStatusRequest struct {
	Names []string
}

type SliceUEBindRequest struct {
	Slice string
	IMSIs []string
}

type SliceUEUnbindRequest struct {
	Slice string
	IMSIs []string
}

// SliceStatusReport is the indication (or control outcome) listing slice
// status on a node.
type SliceStatusReport struct {
	Statuses []SliceStatus
}

func (*SliceConfigRequest) ModelOID() string   { return ModelOID }
func (*SliceDeleteRequest) ModelOID() string   { return ModelOID }
func (*SliceStatusRequest) ModelOID() string   { return ModelOID }
func (*SliceUEBindRequest) ModelOID() string   { return ModelOID }
func (*SliceUEUnbindRequest) ModelOID() string { return ModelOID }
func (*SliceStatusReport) ModelOID() string    { return ModelOID }

func (*SliceConfigRequest) Operation() Operation   { return OpSliceConfig }
func (*SliceDeleteRequest) Operation() Operation   { return OpSliceDelete }
func (*SliceStatusRequest) Operation() Operation   { return OpSliceStatus }
func (*SliceUEBindRequest) Operation() Operation   { return OpUEBind }
func (*SliceUEUnbindRequest) Operation() Operation { return OpUEUnbind }

// NewSliceConfig builds a request configuring one slice.
func NewSliceConfig(name string, share int) *SliceConfigRequest {
	return &SliceConfigRequest{Configs: []SliceConfig{{Name: name, Policy: ProportionalPolicy{Share: share}}}}
}

// EventTrigger subscribes to periodic slice status reports.
type EventTrigger struct {
	PeriodMs int64
}

func (*EventTrigger) ModelOID() string { return ModelOID }
