package slice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildName(t *testing.T) {
	tests := []struct {
		typ   NodeBType
		mcc   string
		mnc   string
		id    int64
		idLen int
		want  string
	}{
		{TypeGNB, "001", "1", 10, 20, "gnB_001_001_00000a"},
		{TypeGNBDU, "310", "410", 0xabc, 20, "gnB_310_410_000abc"},
		{TypeENGNB, "001", "01", 1, 20, "en_gnB_001_001_000001"},
		{TypeENB, "001", "01", 0x19b, 0, "enB_macro_001_001_00019b"},
		{TypeENB, "001", "01", 5, 18, "enB_shortmacro_001_001_000005"},
		{TypeENB, "001", "01", 5, 21, "enB_longmacro_001_001_000005"},
		{TypeNGENB, "001", "01", 5, 20, "ng_enB_macro_001_001_000005"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := BuildName(tt.typ, tt.mcc, tt.mnc, tt.id, tt.idLen)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildNameErrors(t *testing.T) {
	_, err := BuildName("xNB", "001", "01", 1, 20)
	assert.ErrorIs(t, err, ErrUnknownNodeType)
	_, err = BuildName(TypeENB, "001", "01", 1, 19)
	assert.ErrorIs(t, err, ErrInvalidNodeB)
	_, err = BuildName(TypeGNB, "01", "01", 1, 20)
	assert.ErrorIs(t, err, ErrInvalidNodeB)
	_, err = BuildName(TypeGNB, "001", "0001", 1, 20)
	assert.ErrorIs(t, err, ErrInvalidNodeB)
	_, err = BuildName(TypeGNB, "001", "01", -1, 20)
	assert.ErrorIs(t, err, ErrInvalidNodeB)
}

func TestNodeBSliceBinding(t *testing.T) {
	nb, err := NewNodeB(TypeENB, "001", "01", 0x19b, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultIDLen, nb.IDLen)

	assert.True(t, nb.BindSlice("fast"))
	assert.False(t, nb.BindSlice("fast"))
	assert.True(t, nb.BindSlice("default"))
	assert.Equal(t, []string{"default", "fast"}, nb.Slices())
	assert.True(t, nb.UnbindSlice("fast"))
	assert.False(t, nb.UnbindSlice("fast"))
	assert.Equal(t, []string{"default"}, nb.View().Slices)
}

func TestSliceUEs(t *testing.T) {
	s, err := NewSlice("fast", DefaultPolicy(nil))
	require.NoError(t, err)
	assert.True(t, s.BindUE("001010123456789"))
	assert.False(t, s.BindUE("001010123456789"))
	assert.True(t, s.HasUE("001010123456789"))

	v := s.View(nil)
	assert.Equal(t, []string{"001010123456789"}, v.UEs)
	assert.NotNil(t, v.NodeBs)
	assert.Equal(t, PolicyType, v.AllocationPolicy.Type)

	assert.True(t, s.UnbindUE("001010123456789"))
	assert.False(t, s.HasUE("001010123456789"))

	_, err = NewSlice("a/b", nil)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestNewUE(t *testing.T) {
	ue, err := NewUE("001010123456789", "0x1234")
	require.NoError(t, err)
	assert.Equal(t, "0x1234", ue.TMSI)

	_, err = NewUE("", "")
	assert.ErrorIs(t, err, ErrInvalidIMSI)
	_, err = NewUE("12ab", "")
	assert.ErrorIs(t, err, ErrInvalidIMSI)
}
