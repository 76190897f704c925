// Package zylinium defines the mask-configuration service model payloads.
package zylinium

import (
	"errors"
	"strings"
)

const (
	ModelName = "ORAN-E2SM-ZYLINIUM"
	ModelOID  = "1.3.6.1.4.1.1.1.2.999"
)

var ErrInvalidMask = errors.New("mask must be a string of 0 and 1 characters")

// BlockedMask lists blocked downlink RBGs and uplink PRBs, one character per
// block, '1' meaning blocked.
type BlockedMask struct {
	DLRBGMask string `json:"dl_rbg_mask"`
	ULPRBMask string `json:"ul_prb_mask"`
}

func (m BlockedMask) Validate() error {
	for _, s := range []string{m.DLRBGMask, m.ULPRBMask} {
		if strings.Trim(s, "01") != "" {
			return ErrInvalidMask
		}
	}
	return nil
}

type MaskConfigRequest struct {
	Mask BlockedMask
}

type MaskStatusRequest struct{}

// MaskStatusIndication reports the masks currently applied on a node.
type MaskStatusIndication struct {
	Mask BlockedMask
}

// MaskStatusOutcome is the mask echoed in a control ack.
type MaskStatusOutcome struct {
	Mask BlockedMask
}

type EventTrigger struct{}

func (*MaskConfigRequest) ModelOID() string    { return ModelOID }
func (*MaskStatusRequest) ModelOID() string    { return ModelOID }
func (*MaskStatusIndication) ModelOID() string { return ModelOID }
func (*MaskStatusOutcome) ModelOID() string    { return ModelOID }
func (*EventTrigger) ModelOID() string         { return ModelOID }
