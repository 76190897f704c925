package e2sm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexran/nexran/internal/domain/e2ap"
)

type stubModel struct {
	Unimplemented
	id  e2ap.FunctionID
	oid string
}

func (m stubModel) Name() string                { return "stub" }
func (m stubModel) OID() string                 { return m.oid }
func (m stubModel) FunctionID() e2ap.FunctionID { return m.id }

type stubPayload string

func (p stubPayload) ModelOID() string { return string(p) }

func TestRegistry(t *testing.T) {
	a := stubModel{id: 0, oid: "1.2.3"}
	b := stubModel{id: 1, oid: "1.2.4"}
	reg, err := NewRegistry(b, a)
	require.NoError(t, err)

	t.Run("lookup by id", func(t *testing.T) {
		m, ok := reg.Lookup(1)
		require.True(t, ok)
		assert.Equal(t, "1.2.4", m.OID())
		_, ok = reg.Lookup(9)
		assert.False(t, ok)
	})

	t.Run("lookup by payload", func(t *testing.T) {
		m, err := reg.For(stubPayload("1.2.3"))
		require.NoError(t, err)
		assert.Equal(t, e2ap.FunctionID(0), m.FunctionID())

		_, err = reg.For(stubPayload("9.9"))
		assert.ErrorIs(t, err, ErrUnknownModel)
		_, err = reg.For(nil)
		assert.ErrorIs(t, err, ErrUnknownModel)
	})

	t.Run("duplicates rejected", func(t *testing.T) {
		err := reg.Register(stubModel{id: 1, oid: "x"})
		assert.ErrorIs(t, err, ErrDuplicateFunction)
		err = reg.Register(stubModel{id: 5, oid: "1.2.3"})
		assert.ErrorIs(t, err, ErrDuplicateFunction)
	})

	t.Run("ordered listing", func(t *testing.T) {
		models := reg.Models()
		require.Len(t, models, 2)
		assert.Equal(t, e2ap.FunctionID(0), models[0].FunctionID())
	})
}

func TestUnimplemented(t *testing.T) {
	var m Unimplemented
	_, err := m.EncodeEventTrigger(stubPayload("x"))
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = m.EncodeControl(stubPayload("x"))
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = m.DecodeIndication(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = m.DecodeControlOutcome(nil, nil)
	assert.ErrorIs(t, err, ErrNotSupported)

	def, err := m.EncodeActionDefinition(Action{ID: 1})
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestEncodeActions(t *testing.T) {
	m := stubModel{id: 2, oid: "1.2.5"}
	actions, err := EncodeActions(m, []Action{{ID: 1, Type: e2ap.ActionReport}, {ID: 2, Type: e2ap.ActionPolicy}})
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, e2ap.ActionPolicy, actions[1].Type)
}
