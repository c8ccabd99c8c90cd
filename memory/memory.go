// Package memory implements the engine's flat 32768-word address space, and
// the little-endian program image loader that populates it.
package memory

import "fmt"

// Size is the number of addressable words.
const Size = 32768

// Memory is the engine's address space. There is no paging or mirroring: a
// single Memory is exclusively owned by one engine.
type Memory [Size]uint16

// Read returns the word stored at addr. addr must be < Size.
func (m *Memory) Read(addr uint16) uint16 {
	return m[addr]
}

// Write stores data at addr. addr must be < Size.
func (m *Memory) Write(addr uint16, data uint16) {
	m[addr] = data
}

// LoadImage decodes a little-endian program image and copies it into the
// start of memory. The image length must be even; an odd trailing byte is
// rejected.
func LoadImage(image []byte) (*Memory, error) {
	if len(image)%2 != 0 {
		return nil, fmt.Errorf("memory: program image has odd length %d", len(image))
	}
	words := len(image) / 2
	if words > Size {
		return nil, fmt.Errorf("memory: program image has %d words, exceeds address space of %d", words, Size)
	}
	var m Memory
	for i := 0; i < words; i++ {
		m[i] = uint16(image[i*2]) | uint16(image[i*2+1])<<8
	}
	return &m, nil
}
