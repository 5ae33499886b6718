package target

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/crashdbg/engine"
	"github.com/wnxd/crashdbg/target"
)

func TestFetchRegistersPartialFailure(t *testing.T) {
	tgt, eng, host := openSingle(t)
	delete(eng.regs[0], 1)
	delete(eng.regs[0], 3)
	th := tgt.CurrentThread()
	cache := host.cache(th.PTID())
	cache.order = nil

	require.NoError(t, tgt.FetchRegisters(th, target.AllRegisters))

	assert.Equal(t, []int{0, 1, 2, 3}, cache.order)
	want := map[int]regEntry{
		0: {target.RegStatus_Valid, []byte{0, 0, 0, 0, 0, 0, 0, 0}},
		1: {Status: target.RegStatus_Unavailable},
		2: {target.RegStatus_Valid, []byte{2, 2, 2, 2, 2, 2, 2, 2}},
		3: {Status: target.RegStatus_Unavailable},
	}
	if diff := cmp.Diff(want, cache.regs); diff != "" {
		t.Errorf("register cache mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchSingleRegister(t *testing.T) {
	tgt, eng, host := openSingle(t)
	th := tgt.CurrentThread()
	eng.calls = nil
	host.reset()

	require.NoError(t, tgt.FetchRegisters(th, 2))
	assert.Equal(t, []string{"reg 0 2"}, eng.calls)
	assert.Equal(t, []string{"supply (1, 0, 0) 2"}, host.events)

	assert.ErrorIs(t, tgt.FetchRegisters(th, 4), target.ErrRegisterInvalid)
	assert.ErrorIs(t, tgt.FetchRegisters(th, -2), target.ErrRegisterInvalid)
	assert.Equal(t, []string{"reg 0 2"}, eng.calls)
}

func TestFetchRegisterTooWide(t *testing.T) {
	tgt, eng, host := openSingle(t)
	th := tgt.CurrentThread()
	host.arch = &target.RegTable{
		Arch:  engine.ARCH_X86_64,
		Order: engine.BO_LITTLE_ENDIAN,
		Regs: []target.RegDesc{
			{Name: "rax", Size: 8},
			{Name: "zmm0", Size: 64},
			{Name: "rip", Size: 8},
		},
	}
	eng.calls = nil
	host.reset()

	err := tgt.FetchRegisters(th, target.AllRegisters)
	require.ErrorIs(t, err, target.ErrRegisterTooWide)
	var capErr *target.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 1, capErr.Register())
	assert.Equal(t, 64, capErr.Width())

	// the wide register never reaches the engine and nothing after it runs
	assert.Equal(t, []string{"reg 0 0"}, eng.calls)
	assert.Equal(t, []string{"supply (1, 0, 0) 0"}, host.events)

	eng.calls = nil
	err = tgt.FetchRegisters(th, 1)
	require.ErrorIs(t, err, target.ErrRegisterTooWide)
	assert.Empty(t, eng.calls)
}

func TestFetchRegistersForeignThread(t *testing.T) {
	tgt, _, _ := openSingle(t)
	other, _, _ := openMulti(t, 2)

	// a thread of another target resolves by ptid when the ids line up
	require.NoError(t, tgt.FetchRegisters(other.Threads()[0], 0))
	assert.ErrorIs(t, tgt.FetchRegisters(other.Threads()[1], 0), target.ErrThreadInvalid)
	assert.ErrorIs(t, tgt.FetchRegisters(nil, 0), target.ErrThreadInvalid)
}
