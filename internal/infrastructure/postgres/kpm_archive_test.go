package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexran/nexran/internal/domain/kpm"
)

func TestReportBatch(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	sampled := at.Add(-time.Second)
	report := &kpm.Report{
		PeriodMs:        1000,
		AvailableDLPRBs: 50,
		Slices: map[string]kpm.Sample{
			"b": {DLBytes: 2},
			"a": {DLBytes: 1, Time: sampled},
		},
		UEs: map[int64]kpm.Sample{70: {ULBytes: 3}},
	}

	batch := reportBatch(at, "gnB_001_001_00000a", report)
	require.Equal(t, 4, batch.Len())

	q := batch.QueuedQueries
	assert.Equal(t, insertReport, q[0].SQL)
	assert.Equal(t, []any{at, "gnB_001_001_00000a", int64(1000), int64(50), int64(0), int64(0)}, q[0].Arguments)

	assert.Equal(t, insertSample, q[1].SQL)
	assert.Equal(t, sampled, q[1].Arguments[1])
	assert.Equal(t, scopeSlice, q[1].Arguments[3])
	assert.Equal(t, "a", q[1].Arguments[4])
	assert.Equal(t, int64(1), q[1].Arguments[5])

	assert.Equal(t, at, q[2].Arguments[1], "zero sample time falls back to record time")
	assert.Equal(t, "b", q[2].Arguments[4])

	assert.Equal(t, scopeUE, q[3].Arguments[3])
	assert.Equal(t, "70", q[3].Arguments[4])
	assert.Equal(t, int64(3), q[3].Arguments[6])
}

func TestReportBatchEmpty(t *testing.T) {
	batch := reportBatch(time.Now(), "n", &kpm.Report{})
	assert.Equal(t, 1, batch.Len())
}
