package servicemodel

import (
	"fmt"
	"time"

	"github.com/nexran/nexran/internal/domain/e2ap"
	"github.com/nexran/nexran/internal/domain/e2sm"
	"github.com/nexran/nexran/internal/domain/kpm"
)

type kpmTriggerWire struct {
	Period   int   `codec:"period"`
	PeriodMs int64 `codec:"period_ms"`
}

type kpmHeaderWire struct {
	CollectionStartMs int64 `codec:"collection_start_ms"`
}

type kpmSampleWire struct {
	DLBytes   uint64  `codec:"dl_bytes"`
	ULBytes   uint64  `codec:"ul_bytes"`
	DLPRBs    uint64  `codec:"dl_prbs"`
	ULPRBs    uint64  `codec:"ul_prbs"`
	TxPkts    int64   `codec:"tx_pkts"`
	TxErrors  int64   `codec:"tx_errors"`
	TxBrate   int64   `codec:"tx_brate"`
	RxPkts    int64   `codec:"rx_pkts"`
	RxErrors  int64   `codec:"rx_errors"`
	RxBrate   int64   `codec:"rx_brate"`
	DLCQI     float64 `codec:"dl_cqi"`
	DLRI      float64 `codec:"dl_ri"`
	DLPMI     float64 `codec:"dl_pmi"`
	ULPHR     float64 `codec:"ul_phr"`
	ULSINR    float64 `codec:"ul_sinr"`
	ULMCS     float64 `codec:"ul_mcs"`
	ULSamples int64   `codec:"ul_samples"`
	DLMCS     float64 `codec:"dl_mcs"`
	DLSamples int64   `codec:"dl_samples"`
}

type kpmMessageWire struct {
	PeriodMs        int64                    `codec:"period_ms"`
	AvailableDLPRBs int64                    `codec:"available_dl_prbs"`
	AvailableULPRBs int64                    `codec:"available_ul_prbs"`
	ActiveUEs       int64                    `codec:"active_ues"`
	UEs             map[int64]kpmSampleWire  `codec:"ues"`
	Slices          map[string]kpmSampleWire `codec:"slices"`
}

func (w kpmSampleWire) sample(at time.Time) kpm.Sample {
	return kpm.Sample{
		Time:      at,
		DLBytes:   w.DLBytes,
		ULBytes:   w.ULBytes,
		DLPRBs:    w.DLPRBs,
		ULPRBs:    w.ULPRBs,
		TxPkts:    w.TxPkts,
		TxErrors:  w.TxErrors,
		TxBrate:   w.TxBrate,
		RxPkts:    w.RxPkts,
		RxErrors:  w.RxErrors,
		RxBrate:   w.RxBrate,
		DLCQI:     w.DLCQI,
		DLRI:      w.DLRI,
		DLPMI:     w.DLPMI,
		ULPHR:     w.ULPHR,
		ULSINR:    w.ULSINR,
		ULMCS:     w.ULMCS,
		ULSamples: w.ULSamples,
		DLMCS:     w.DLMCS,
		DLSamples: w.DLSamples,
	}
}

func sampleWire(s kpm.Sample) kpmSampleWire {
	return kpmSampleWire{
		DLBytes:   s.DLBytes,
		ULBytes:   s.ULBytes,
		DLPRBs:    s.DLPRBs,
		ULPRBs:    s.ULPRBs,
		TxPkts:    s.TxPkts,
		TxErrors:  s.TxErrors,
		TxBrate:   s.TxBrate,
		RxPkts:    s.RxPkts,
		RxErrors:  s.RxErrors,
		RxBrate:   s.RxBrate,
		DLCQI:     s.DLCQI,
		DLRI:      s.DLRI,
		DLPMI:     s.DLPMI,
		ULPHR:     s.ULPHR,
		ULSINR:    s.ULSINR,
		ULMCS:     s.ULMCS,
		ULSamples: s.ULSamples,
		DLMCS:     s.DLMCS,
		DLSamples: s.DLSamples,
	}
}

// KPM is the key performance measurement model. It only reports.
type KPM struct {
	e2sm.Unimplemented
	s   Serializer
	now func() time.Time
}

func NewKPM(s Serializer, now func() time.Time) *KPM {
	if now == nil {
		now = time.Now
	}
	return &KPM{s: s, now: now}
}

func (m *KPM) Name() string { return kpm.ModelName }

func (m *KPM) OID() string { return kpm.ModelOID }

func (m *KPM) FunctionID() e2ap.FunctionID { return FunctionKPM }

func (m *KPM) EncodeEventTrigger(trigger e2sm.EventTrigger) ([]byte, error) {
	t, ok := trigger.(*kpm.EventTrigger)
	if !ok {
		return nil, wrongModel(kpm.ModelName, trigger)
	}
	if !t.Period.Valid() {
		return nil, fmt.Errorf("%w: %d", kpm.ErrInvalidPeriod, t.Period)
	}
	return m.s.Marshal(kpmTriggerWire{Period: int(t.Period), PeriodMs: t.Period.Milliseconds()})
}

// DecodeIndication stamps every sample with the header's collection time,
// or the current time when the header carries none.
func (m *KPM) DecodeIndication(_ e2sm.EventTrigger, header, message []byte) (e2sm.Indication, error) {
	at := m.now()
	if len(header) > 0 {
		var h kpmHeaderWire
		if err := m.s.Unmarshal(header, &h); err != nil {
			return nil, fmt.Errorf("kpm header: %w", err)
		}
		if h.CollectionStartMs > 0 {
			at = time.UnixMilli(h.CollectionStartMs)
		}
	}
	var w kpmMessageWire
	if err := m.s.Unmarshal(message, &w); err != nil {
		return nil, fmt.Errorf("kpm message: %w", err)
	}
	report := &kpm.Report{
		PeriodMs:        w.PeriodMs,
		AvailableDLPRBs: w.AvailableDLPRBs,
		AvailableULPRBs: w.AvailableULPRBs,
		ActiveUEs:       w.ActiveUEs,
		UEs:             make(map[int64]kpm.Sample, len(w.UEs)),
		Slices:          make(map[string]kpm.Sample, len(w.Slices)),
	}
	for rnti, s := range w.UEs {
		report.UEs[rnti] = s.sample(at)
	}
	for name, s := range w.Slices {
		report.Slices[name] = s.sample(at)
	}
	return &kpm.Indication{Report: report}, nil
}

// EncodeIndication produces the header and message an agent would send for
// report. Sample times are taken from at.
func (m *KPM) EncodeIndication(at time.Time, report *kpm.Report) (header, message []byte, err error) {
	header, err = m.s.Marshal(kpmHeaderWire{CollectionStartMs: at.UnixMilli()})
	if err != nil {
		return nil, nil, err
	}
	w := kpmMessageWire{
		PeriodMs:        report.PeriodMs,
		AvailableDLPRBs: report.AvailableDLPRBs,
		AvailableULPRBs: report.AvailableULPRBs,
		ActiveUEs:       report.ActiveUEs,
		UEs:             make(map[int64]kpmSampleWire, len(report.UEs)),
		Slices:          make(map[string]kpmSampleWire, len(report.Slices)),
	}
	for rnti, s := range report.UEs {
		w.UEs[rnti] = sampleWire(s)
	}
	for name, s := range report.Slices {
		w.Slices[name] = sampleWire(s)
	}
	message, err = m.s.Marshal(w)
	if err != nil {
		return nil, nil, err
	}
	return header, message, nil
}
