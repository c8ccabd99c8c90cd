// Package snapshot serializes and restores engine state as YAML, letting a
// session be checkpointed and resumed exactly.
package snapshot

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"vm15/engine"
	"vm15/memory"
	"vm15/screen"
)

// Snapshot is a value-copy of everything an Engine needs to resume
// execution identically, short of a freshly wired Screen.
type Snapshot struct {
	Stack           []uint16  `yaml:"stack"`
	Memory          []uint16  `yaml:"memory"`
	Registers       [8]uint16 `yaml:"registers"`
	IP              uint16    `yaml:"curr_point"`
	Register8Preset *uint16   `yaml:"register_8_preset,omitempty"`
	OpCount         uint64    `yaml:"operation_count"`
}

// Capture copies e's current state into a Snapshot.
func Capture(e *engine.Engine) Snapshot {
	mem := make([]uint16, memory.Size)
	for addr := 0; addr < memory.Size; addr++ {
		mem[addr] = e.Memory.Read(uint16(addr))
	}

	stack := make([]uint16, len(e.Stack))
	copy(stack, e.Stack)

	return Snapshot{
		Stack:           stack,
		Memory:          mem,
		Registers:       e.Registers,
		IP:              e.IP,
		Register8Preset: e.Register8Preset,
		OpCount:         e.OpCount,
	}
}

// Restore builds a runnable Engine from s, wired to scr. The engine's
// instrumented-override flags (BypassTeleporterCheck) are not part of the
// snapshot; callers set them after Restore returns if desired.
func (s Snapshot) Restore(scr *screen.Screen) (*engine.Engine, error) {
	if len(s.Memory) != memory.Size {
		return nil, fmt.Errorf("snapshot: memory has %d words, want %d", len(s.Memory), memory.Size)
	}

	image := make([]byte, memory.Size*2)
	for i, w := range s.Memory {
		image[i*2] = byte(w)
		image[i*2+1] = byte(w >> 8)
	}
	mem, err := memory.LoadImage(image)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	e := engine.New(mem, scr)
	e.Registers = s.Registers
	e.IP = s.IP
	e.Register8Preset = s.Register8Preset
	e.OpCount = s.OpCount
	e.Stack = make([]uint16, len(s.Stack))
	copy(e.Stack, s.Stack)

	return e, nil
}

// Marshal encodes s as YAML.
func (s Snapshot) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Unmarshal decodes YAML-encoded snapshot data produced by Marshal.
func Unmarshal(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: malformed snapshot: %w", err)
	}
	if len(s.Memory) != 0 && len(s.Memory) != memory.Size {
		return Snapshot{}, fmt.Errorf("snapshot: memory has %d words, want %d", len(s.Memory), memory.Size)
	}
	return s, nil
}
