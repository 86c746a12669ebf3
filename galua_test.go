package galua

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/zboralski/galua/internal/vm"
)

// chunkImage assembles the binary image of a one-function chunk that runs
// print(1 + 2), the way luac 5.3 would serialize it on a 64-bit
// little-endian host.
func chunkImage() []byte {
	var b []byte
	u32 := func(v uint32) { b = binary.LittleEndian.AppendUint32(b, v) }
	u64 := func(v uint64) { b = binary.LittleEndian.AppendUint64(b, v) }
	str := func(s string) {
		b = append(b, byte(len(s)+1))
		b = append(b, s...)
	}

	// header
	b = append(b, 0x1B, 0x4C, 0x75, 0x61) // signature
	b = append(b, 0x53, 0x00)             // version, format
	b = append(b, 0x19, 0x93, 0x0D, 0x0A, 0x1A, 0x0A)
	b = append(b, 4, 8, 4, 8, 8) // sizes
	u64(0x5678)
	u64(math.Float64bits(370.5))

	b = append(b, 1) // top-level upvalue count

	// prototype
	str("@add.lua")
	u32(0) // line_defined
	u32(0) // last_line_defined
	b = append(b, 0, 1, 2) // num_params, is_vararg, max_stack_size

	u32(4) // code
	u32(uint32(vm.MakeABC(vm.OpGetTabUp, 0, 0, 0x100)))
	u32(uint32(vm.MakeABC(vm.OpAdd, 1, 0x101, 0x102)))
	u32(uint32(vm.MakeABC(vm.OpCall, 0, 2, 1)))
	u32(uint32(vm.MakeABC(vm.OpReturn, 0, 1, 0)))

	u32(3) // constants
	b = append(b, 0x04)
	str("print")
	b = append(b, 0x13)
	u64(1)
	b = append(b, 0x13)
	u64(2)

	u32(1) // upvalues
	b = append(b, 1, 0)

	u32(0) // protos
	u32(0) // line info
	u32(0) // local vars
	u32(0) // upvalue names

	return b
}

func TestOpenBytesAndRun(t *testing.T) {
	st, err := OpenBytes(chunkImage(), "=image")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	st.SetOutput(&buf)
	if err := st.Call(0, 0); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "3\n" {
		t.Errorf("output = %q, want \"3\\n\"", got)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add.luac")
	if err := os.WriteFile(path, chunkImage(), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	st.SetOutput(&buf)
	if err := st.Call(0, 0); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "3\n" {
		t.Errorf("output = %q, want \"3\\n\"", got)
	}
}

func TestOpenRejectsCorruptChunk(t *testing.T) {
	img := chunkImage()
	img[4] = 0x54 // wrong version
	if _, err := OpenBytes(img, "=bad"); err == nil {
		t.Fatal("corrupt chunk accepted")
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.luac")); err == nil {
		t.Fatal("missing file accepted")
	}
}
