package e2ap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionIDKeyRoundTrip(t *testing.T) {
	id := TransactionID{RequestorID: 4242, InstanceID: 17}
	assert.Equal(t, "4242-17", id.Key())

	parsed, err := ParseKey(id.Key())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	for _, key := range []string{"", "12", "a-1", "1-b"} {
		_, err := ParseKey(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestSubIDDeterministicAndPositive(t *testing.T) {
	a := TransactionID{RequestorID: 65535, InstanceID: 1}
	b := TransactionID{RequestorID: 65535, InstanceID: 1}
	c := TransactionID{RequestorID: 65535, InstanceID: 2}

	assert.Equal(t, a.SubID(), b.SubID())
	assert.NotEqual(t, a.SubID(), c.SubID())
	for i := int64(0); i < 1000; i++ {
		id := TransactionID{RequestorID: 7, InstanceID: i}
		assert.GreaterOrEqual(t, id.SubID(), int32(0))
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "indication", KindIndication.String())
	assert.Equal(t, "unknown(1)", Kind(1).String())
	assert.True(t, KindControlAck.Valid())
	assert.False(t, Kind(99).Valid())
}

func TestNewPDU(t *testing.T) {
	pdu, err := NewPDU(KindControlAck)
	require.NoError(t, err)
	assert.Equal(t, KindControlAck, pdu.Kind())

	_, err = NewPDU(Kind(5))
	assert.ErrorIs(t, err, ErrUnknownKind)
}
