package conformance

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nativeexport "github.com/analogrelay/go-native-export"
)

func TestCheckPassesForCalculate(t *testing.T) {
	r := Check(nativeexport.Func(nativeexport.Calculate))
	assert.Len(t, r.Cases, len(fixed)+2*DefaultOptions.Samples)
	assert.Empty(t, r.Failed())
	assert.NoError(t, r.Err())
}

func TestCheckDetectsSaturatingAdd(t *testing.T) {
	saturating := nativeexport.Func(func(a, b int32) int32 {
		s := int64(a) + int64(b)
		switch {
		case s > 1<<31-1:
			return 1<<31 - 1
		case s < -1<<31:
			return -1 << 31
		}
		return int32(s)
	})

	r := CheckWith(saturating, Options{})
	failed := r.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, "overflow", failed[0].Name)
	assert.Equal(t, "underflow", failed[1].Name)
	assert.ErrorContains(t, r.Err(), "overflow: Calculate(2147483647, 1) = 2147483647, want -2147483648")
}

type brokenBinding struct{}

func (brokenBinding) Calculate(a, b int32) (int32, error) {
	return 0, errors.New("library is closed")
}

func TestCheckReportsBindingErrors(t *testing.T) {
	r := CheckWith(brokenBinding{}, Options{})
	assert.Len(t, r.Failed(), len(fixed))
	assert.ErrorContains(t, r.Err(), "sum: Calculate(2, 3): library is closed")
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	r := CheckWith(nativeexport.Func(nativeexport.Calculate), Options{})
	require.NoError(t, r.Write(&buf))

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "report", buf.Bytes())
}
