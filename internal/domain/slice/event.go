package slice

import "time"

// Reason says why the controller changed a share.
type Reason string

const (
	ReasonAutoEqualize   Reason = "auto_equalize"
	ReasonThrottleStart  Reason = "throttle_start"
	ReasonThrottleUpdate Reason = "throttle_update"
	ReasonThrottleEnd    Reason = "throttle_end"
)

// Decision records one share change made by the controller. RequestID names
// the request group tracking the controls that pushed it.
type Decision struct {
	Slice     string    `json:"slice"`
	Reason    Reason    `json:"reason"`
	Factor    float64   `json:"factor"`
	OldShare  int       `json:"old_share"`
	NewShare  int       `json:"new_share"`
	NodeBs    []string  `json:"nodebs"`
	Time      time.Time `json:"time"`
	RequestID string    `json:"request_id,omitempty"`
}
