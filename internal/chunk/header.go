// Package chunk parses precompiled Lua 5.3 binary chunks into the immutable
// prototype tree the VM executes. Only the 64-bit little-endian format with
// the canonical field sizes is accepted.
package chunk

// Header is the fixed 33-byte preamble of a binary chunk. Every field must
// match Canonical exactly; the trailing integer and float act as endianness
// and float-format probes.
type Header struct {
	Signature   [4]byte
	Version     byte
	Format      byte
	LuacData    [6]byte
	CIntSize    byte
	SizetSize   byte
	InsSize     byte
	LuaIntSize  byte
	LuaNumSize  byte
	LuacInt     int64
	LuacNum     float64
}

// Canonical is the only header this reader accepts: Lua 5.3, format 0,
// 64-bit sizes, little-endian.
var Canonical = Header{
	Signature:  [4]byte{0x1B, 0x4C, 0x75, 0x61},
	Version:    0x53,
	Format:     0,
	LuacData:   [6]byte{0x19, 0x93, 0x0D, 0x0A, 0x1A, 0x0A},
	CIntSize:   4,
	SizetSize:  8,
	InsSize:    4,
	LuaIntSize: 8,
	LuaNumSize: 8,
	LuacInt:    0x5678,
	LuacNum:    370.5,
}

// Constant tags used in the constant table serialization.
const (
	TagNil      byte = 0x00
	TagBool     byte = 0x01
	TagNumber   byte = 0x03
	TagInteger  byte = 0x13
	TagShortStr byte = 0x04
	TagLongStr  byte = 0x14
)
