package kpm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	ModelName = "ORAN-E2SM-KPM"
	ModelOID  = "1.3.6.1.4.1.1.1.2.2"
)

var ErrInvalidPeriod = errors.New("kpm period index must be between 0 (10ms) and 19 (10240ms)")

// Sample is one reporting period's metrics for a UE or a slice.
type Sample struct {
	Time      time.Time `json:"time"`
	DLBytes   uint64    `json:"dl_bytes"`
	ULBytes   uint64    `json:"ul_bytes"`
	DLPRBs    uint64    `json:"dl_prbs"`
	ULPRBs    uint64    `json:"ul_prbs"`
	TxPkts    int64     `json:"tx_pkts"`
	TxErrors  int64     `json:"tx_errors"`
	TxBrate   int64     `json:"tx_brate"`
	RxPkts    int64     `json:"rx_pkts"`
	RxErrors  int64     `json:"rx_errors"`
	RxBrate   int64     `json:"rx_brate"`
	DLCQI     float64   `json:"dl_cqi"`
	DLRI      float64   `json:"dl_ri"`
	DLPMI     float64   `json:"dl_pmi"`
	ULPHR     float64   `json:"ul_phr"`
	ULSINR    float64   `json:"ul_sinr"`
	ULMCS     float64   `json:"ul_mcs"`
	ULSamples int64     `json:"ul_samples"`
	DLMCS     float64   `json:"dl_mcs"`
	DLSamples int64     `json:"dl_samples"`
}

// TotalBytes is DLBytes + ULBytes.
func (s Sample) TotalBytes() uint64 {
	return s.DLBytes + s.ULBytes
}

func (s *Sample) add(o Sample) {
	s.DLBytes += o.DLBytes
	s.ULBytes += o.ULBytes
	s.DLPRBs += o.DLPRBs
	s.ULPRBs += o.ULPRBs
	s.TxPkts += o.TxPkts
	s.TxErrors += o.TxErrors
	s.TxBrate += o.TxBrate
	s.RxPkts += o.RxPkts
	s.RxErrors += o.RxErrors
	s.RxBrate += o.RxBrate
	s.DLCQI += o.DLCQI
	s.DLRI += o.DLRI
	s.DLPMI += o.DLPMI
	s.ULPHR += o.ULPHR
	s.ULSINR += o.ULSINR
	s.ULMCS += o.ULMCS
	s.ULSamples += o.ULSamples
	s.DLMCS += o.DLMCS
	s.DLSamples += o.DLSamples
}

func (s *Sample) sub(o Sample) {
	s.DLBytes = subFloor(s.DLBytes, o.DLBytes)
	s.ULBytes = subFloor(s.ULBytes, o.ULBytes)
	s.DLPRBs = subFloor(s.DLPRBs, o.DLPRBs)
	s.ULPRBs = subFloor(s.ULPRBs, o.ULPRBs)
	s.TxPkts -= o.TxPkts
	s.TxErrors -= o.TxErrors
	s.TxBrate -= o.TxBrate
	s.RxPkts -= o.RxPkts
	s.RxErrors -= o.RxErrors
	s.RxBrate -= o.RxBrate
	s.DLCQI -= o.DLCQI
	s.DLRI -= o.DLRI
	s.DLPMI -= o.DLPMI
	s.ULPHR -= o.ULPHR
	s.ULSINR -= o.ULSINR
	s.ULMCS -= o.ULMCS
	s.ULSamples -= o.ULSamples
	s.DLMCS -= o.DLMCS
	s.DLSamples -= o.DLSamples
}

func subFloor(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// Report is one decoded KPM indication.
type Report struct {
	PeriodMs        int64             `json:"period_ms"`
	AvailableDLPRBs int64             `json:"available_dl_prbs"`
	AvailableULPRBs int64             `json:"available_ul_prbs"`
	ActiveUEs       int64             `json:"active_ues"`
	UEs             map[int64]Sample  `json:"ues"`
	Slices          map[string]Sample `json:"slices"`
}

// Indication wraps a report so it can travel through the service-model
// contract.
type Indication struct {
	Report *Report
}

func (*Indication) ModelOID() string { return ModelOID }

// EventTrigger asks for periodic reports.
type EventTrigger struct {
	Period Period
}

func (*EventTrigger) ModelOID() string { return ModelOID }

// Period is a KPM reporting period index.
type Period int

const (
	PeriodMin     Period = 0
	PeriodMax     Period = 19
	PeriodDefault Period = 18
)

var periodMs = [...]int64{
	10, 20, 32, 40, 60, 64, 70, 80, 128, 160,
	256, 320, 512, 640, 1024, 1280, 2048, 2560, 5120, 10240,
}

func ParsePeriod(index int) (Period, error) {
	if index < int(PeriodMin) || index > int(PeriodMax) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPeriod, index)
	}
	return Period(index), nil
}

func (p Period) Valid() bool {
	return p >= PeriodMin && p <= PeriodMax
}

// Milliseconds returns the period length, or 0 for an invalid index.
func (p Period) Milliseconds() int64 {
	if !p.Valid() {
		return 0
	}
	return periodMs[p]
}

func (p Period) Duration() time.Duration {
	return time.Duration(p.Milliseconds()) * time.Millisecond
}

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_archive.go -package=mocks . Archive

// Archive stores reports for offline analysis.
type Archive interface {
	Record(ctx context.Context, nodeb string, report *Report) error
}
