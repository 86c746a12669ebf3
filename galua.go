// Package galua embeds the Lua 5.3 bytecode VM: load a precompiled chunk,
// install the base builtins, and call into it.
package galua

import (
	"github.com/zboralski/galua/internal/builtin"
	_ "github.com/zboralski/galua/internal/builtin/base"
	"github.com/zboralski/galua/internal/chunk"
	"github.com/zboralski/galua/internal/vm"
)

// Open loads a chunk file into a fresh State with the base builtins
// installed and the top-level closure pushed, ready for Call(0, 0).
func Open(path string) (*vm.State, error) {
	ch, err := chunk.FromFile(path)
	if err != nil {
		return nil, err
	}
	st := vm.New()
	builtin.Install(st)
	st.LoadChunk(ch)
	return st, nil
}

// OpenBytes is Open over an in-memory chunk image. name becomes the chunk
// source when the image carries none.
func OpenBytes(data []byte, name string) (*vm.State, error) {
	ch, err := chunk.NewReader(data, name).Chunk()
	if err != nil {
		return nil, err
	}
	st := vm.New()
	builtin.Install(st)
	st.LoadChunk(ch)
	return st, nil
}
