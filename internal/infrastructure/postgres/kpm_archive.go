package postgres

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nexran/nexran/internal/domain/kpm"
)

const (
	insertReport = `
		INSERT INTO kpm_reports (recorded_at, nodeb, period_ms, available_dl_prbs, available_ul_prbs, active_ues)
		VALUES ($1,$2,$3,$4,$5,$6)`
	insertSample = `
		INSERT INTO kpm_samples
		(recorded_at, sample_at, nodeb, scope, subject, dl_bytes, ul_bytes, dl_prbs, ul_prbs, tx_brate, rx_brate, dl_cqi, ul_sinr, dl_mcs, ul_mcs)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
)

const (
	scopeSlice = "slice"
	scopeUE    = "ue"
)

// KPMArchive implements kpm.Archive. Each report is written in one batch.
type KPMArchive struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ kpm.Archive = (*KPMArchive)(nil)

func NewKPMArchive(pool *pgxpool.Pool) *KPMArchive {
	return &KPMArchive{pool: pool, now: time.Now}
}

func (a *KPMArchive) Record(ctx context.Context, nodeb string, report *kpm.Report) error {
	batch := reportBatch(a.now().UTC(), nodeb, report)
	return a.pool.SendBatch(ctx, batch).Close()
}

func reportBatch(at time.Time, nodeb string, report *kpm.Report) *pgx.Batch {
	batch := &pgx.Batch{}
	batch.Queue(insertReport, at, nodeb, report.PeriodMs, report.AvailableDLPRBs, report.AvailableULPRBs, report.ActiveUEs)

	names := make([]string, 0, len(report.Slices))
	for name := range report.Slices {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		queueSample(batch, at, nodeb, scopeSlice, name, report.Slices[name])
	}

	rntis := make([]int64, 0, len(report.UEs))
	for rnti := range report.UEs {
		rntis = append(rntis, rnti)
	}
	sort.Slice(rntis, func(i, j int) bool { return rntis[i] < rntis[j] })
	for _, rnti := range rntis {
		queueSample(batch, at, nodeb, scopeUE, strconv.FormatInt(rnti, 10), report.UEs[rnti])
	}
	return batch
}

func queueSample(batch *pgx.Batch, at time.Time, nodeb, scope, subject string, s kpm.Sample) {
	sampleAt := s.Time
	if sampleAt.IsZero() {
		sampleAt = at
	}
	batch.Queue(insertSample, at, sampleAt, nodeb, scope, subject,
		int64(s.DLBytes), int64(s.ULBytes), int64(s.DLPRBs), int64(s.ULPRBs),
		s.TxBrate, s.RxBrate, s.DLCQI, s.ULSINR, s.DLMCS, s.ULMCS)
}
