package loader_test

import (
	"testing"

	"github.com/lookbusy1344/picosim/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSource_RunsToHalt(t *testing.T) {
	m, errs := loader.LoadSource(`LOAD s0, 05
ADD s0, 03`, 0x42, nil)

	require.Nil(t, errs)
	require.NotNil(t, m)

	halted, _, fault := m.Run(100)
	require.Nil(t, fault)
	assert.True(t, halted)
	assert.Equal(t, byte(8), m.Register(0))
}

func TestLoadSource_PropagatesAssemblyErrors(t *testing.T) {
	_, errs := loader.LoadSource(`JUMP nowhere`, 0, nil)

	require.NotNil(t, errs)
	assert.True(t, errs.HasErrors())
}
