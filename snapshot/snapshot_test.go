package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vm15/engine"
	"vm15/memory"
	"vm15/screen"
)

func newTestEngine(t *testing.T, program []uint16) *engine.Engine {
	t.Helper()
	var words [memory.Size]uint16
	copy(words[:], program)

	image := make([]byte, len(words)*2)
	for i, w := range words {
		image[i*2] = byte(w)
		image[i*2+1] = byte(w >> 8)
	}
	mem, err := memory.LoadImage(image)
	assert.NoError(t, err)

	_, vmSide := screen.New()
	return engine.New(mem, vmSide)
}

func TestRoundTrip(t *testing.T) {
	e := newTestEngine(t, []uint16{9, 32768, 32758, 15, 19, 32768, 0})
	e.Stack = []uint16{1, 2, 3}
	e.Registers[3] = 42
	e.IP = 5
	preset := uint16(99)
	e.Register8Preset = &preset
	e.OpCount = 12345

	snap := Capture(e)
	data, err := snap.Marshal()
	assert.NoError(t, err)

	restored, err := Unmarshal(data)
	assert.NoError(t, err)

	_, vmSide := screen.New()
	restoredEngine, err := restored.Restore(vmSide)
	assert.NoError(t, err)

	assert.Equal(t, e.Registers, restoredEngine.Registers)
	assert.Equal(t, e.Stack, restoredEngine.Stack)
	assert.Equal(t, e.IP, restoredEngine.IP)
	assert.Equal(t, e.OpCount, restoredEngine.OpCount)
	assert.Equal(t, *e.Register8Preset, *restoredEngine.Register8Preset)
	assert.Equal(t, e.Memory.Read(0), restoredEngine.Memory.Read(0))
}

func TestDeterministicOutputAfterRestore(t *testing.T) {
	e := newTestEngine(t, []uint16{19, 72, 19, 105, 0})
	snap := Capture(e)

	host, vmSide := screen.New()
	restored, err := snap.Restore(vmSide)
	assert.NoError(t, err)

	assert.NoError(t, restored.Run())
	assert.Equal(t, "Hi", host.GetAll())
}

func TestUnmarshalRejectsWrongMemoryLength(t *testing.T) {
	data := []byte("memory: [1, 2, 3]\n")
	_, err := Unmarshal(data)
	assert.Error(t, err)
}

func TestRestoreRejectsWrongMemoryLength(t *testing.T) {
	s := Snapshot{Memory: []uint16{1, 2, 3}}
	_, vmSide := screen.New()
	_, err := s.Restore(vmSide)
	assert.Error(t, err)
}
