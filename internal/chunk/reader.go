package chunk

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/zboralski/galua/internal/value"
)

// LoadError reports a corrupt or incompatible chunk. It names the field being
// read and the byte offset where reading failed.
type LoadError struct {
	Field  string
	Offset int
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load chunk: %s at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Reader decodes the little-endian chunk byte stream.
type Reader struct {
	data []byte
	off  int
	name string
}

// NewReader wraps an in-memory chunk image. name becomes the source of the
// top-level prototype when the chunk carries none.
func NewReader(data []byte, name string) *Reader {
	return &Reader{data: data, name: name}
}

// FromFile reads and parses one chunk file. The top-level prototype's
// fallback source is "@" + path, the luac convention.
func FromFile(path string) (*Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chunk file: %w", err)
	}
	return NewReader(data, "@"+path).Chunk()
}

func (r *Reader) fail(field string, err error) error {
	return &LoadError{Field: field, Offset: r.off, Err: err}
}

func (r *Reader) take(field string, n int) ([]byte, error) {
	if n < 0 {
		return nil, r.fail(field, fmt.Errorf("corrupt length"))
	}
	if r.off+n > len(r.data) {
		return nil, r.fail(field, fmt.Errorf("truncated: need %d bytes, have %d", n, len(r.data)-r.off))
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) byte(field string) (byte, error) {
	b, err := r.take(field, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) uint32(field string) (uint32, error) {
	b, err := r.take(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) uint64(field string) (uint64, error) {
	b, err := r.take(field, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) int64(field string) (int64, error) {
	u, err := r.uint64(field)
	return int64(u), err
}

func (r *Reader) float64(field string) (float64, error) {
	u, err := r.uint64(field)
	return math.Float64frombits(u), err
}

// string reads a length-prefixed string: a one-byte short length, with 0xFF
// escaping to a full 8-byte length. The stored length counts the C
// terminator, which is not stored, so the payload is length-1 bytes. A zero
// length means the empty string.
func (r *Reader) string(field string) (string, error) {
	n, err := r.byte(field)
	if err != nil {
		return "", err
	}
	size := uint64(n)
	if size == 0 {
		return "", nil
	}
	if size == 0xFF {
		size, err = r.uint64(field)
		if err != nil {
			return "", err
		}
	}
	if size > uint64(len(r.data)) {
		return "", r.fail(field, fmt.Errorf("corrupt length %d", size))
	}
	b, err := r.take(field, int(size-1))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckHeader validates the 33-byte preamble against Canonical. The returned
// error names the first mismatching field.
func (r *Reader) CheckHeader() (Header, error) {
	var h Header
	c := Canonical

	sig, err := r.take("signature", 4)
	if err != nil {
		return h, err
	}
	copy(h.Signature[:], sig)
	if h.Signature != c.Signature {
		return h, r.fail("signature", fmt.Errorf("not a precompiled chunk"))
	}

	if h.Version, err = r.byte("version"); err != nil {
		return h, err
	}
	if h.Version != c.Version {
		return h, r.fail("version", fmt.Errorf("expected 0x%02x, got 0x%02x", c.Version, h.Version))
	}
	if h.Format, err = r.byte("format"); err != nil {
		return h, err
	}
	if h.Format != c.Format {
		return h, r.fail("format", fmt.Errorf("expected %d, got %d", c.Format, h.Format))
	}

	data, err := r.take("luac_data", 6)
	if err != nil {
		return h, err
	}
	copy(h.LuacData[:], data)
	if h.LuacData != c.LuacData {
		return h, r.fail("luac_data", fmt.Errorf("conversion marker corrupted"))
	}

	sizes := []struct {
		name string
		got  *byte
		want byte
	}{
		{"cint_size", &h.CIntSize, c.CIntSize},
		{"sizet_size", &h.SizetSize, c.SizetSize},
		{"instruction_size", &h.InsSize, c.InsSize},
		{"lua_integer_size", &h.LuaIntSize, c.LuaIntSize},
		{"lua_number_size", &h.LuaNumSize, c.LuaNumSize},
	}
	for _, s := range sizes {
		if *s.got, err = r.byte(s.name); err != nil {
			return h, err
		}
		if *s.got != s.want {
			return h, r.fail(s.name, fmt.Errorf("expected %d, got %d", s.want, *s.got))
		}
	}

	if h.LuacInt, err = r.int64("luac_int"); err != nil {
		return h, err
	}
	if h.LuacInt != c.LuacInt {
		return h, r.fail("luac_int", fmt.Errorf("endianness mismatch"))
	}
	if h.LuacNum, err = r.float64("luac_num"); err != nil {
		return h, err
	}
	if h.LuacNum != c.LuacNum {
		return h, r.fail("luac_num", fmt.Errorf("float format mismatch"))
	}

	return h, nil
}

// Chunk parses the whole stream: header, top-level upvalue count, and the
// prototype tree.
func (r *Reader) Chunk() (*Chunk, error) {
	h, err := r.CheckHeader()
	if err != nil {
		return nil, err
	}
	nup, err := r.byte("upvalue_count")
	if err != nil {
		return nil, err
	}
	main, err := r.prototype(r.name)
	if err != nil {
		return nil, err
	}
	return &Chunk{Header: h, UpvalueCount: nup, Main: main}, nil
}

func (r *Reader) prototype(parentSource string) (*Prototype, error) {
	p := &Prototype{}

	source, err := r.string("source")
	if err != nil {
		return nil, err
	}
	if source == "" {
		source = parentSource
	}
	p.Source = source

	if p.LineDefined, err = r.uint32("line_defined"); err != nil {
		return nil, err
	}
	if p.LastLineDefined, err = r.uint32("last_line_defined"); err != nil {
		return nil, err
	}
	numParams, err := r.byte("num_params")
	if err != nil {
		return nil, err
	}
	p.NumParams = numParams
	isVararg, err := r.byte("is_vararg")
	if err != nil {
		return nil, err
	}
	p.IsVararg = isVararg != 0
	if p.MaxStackSize, err = r.byte("max_stack_size"); err != nil {
		return nil, err
	}

	if p.Code, err = r.code(); err != nil {
		return nil, err
	}
	if p.Constants, err = r.constants(); err != nil {
		return nil, err
	}
	if p.Upvalues, err = r.upvalues(); err != nil {
		return nil, err
	}
	if p.Protos, err = r.protos(source); err != nil {
		return nil, err
	}
	if p.LineInfo, err = r.lineInfo(); err != nil {
		return nil, err
	}
	if p.LocalVars, err = r.localVars(); err != nil {
		return nil, err
	}
	if p.UpvalueNames, err = r.upvalueNames(); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *Reader) code() ([]uint32, error) {
	count, err := r.uint32("code_count")
	if err != nil {
		return nil, err
	}
	code := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		ins, err := r.uint32("code")
		if err != nil {
			return nil, err
		}
		code = append(code, ins)
	}
	return code, nil
}

func (r *Reader) constants() ([]value.Value, error) {
	count, err := r.uint32("constant_count")
	if err != nil {
		return nil, err
	}
	consts := make([]value.Value, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := r.constant()
		if err != nil {
			return nil, err
		}
		consts = append(consts, v)
	}
	return consts, nil
}

func (r *Reader) constant() (value.Value, error) {
	tag, err := r.byte("constant_tag")
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagNil:
		return value.Nil, nil
	case TagBool:
		b, err := r.byte("constant_bool")
		if err != nil {
			return nil, err
		}
		return value.Bool(b != 0), nil
	case TagNumber:
		f, err := r.float64("constant_number")
		if err != nil {
			return nil, err
		}
		return value.Float(f), nil
	case TagInteger:
		i, err := r.int64("constant_integer")
		if err != nil {
			return nil, err
		}
		return value.Integer(i), nil
	case TagShortStr, TagLongStr:
		s, err := r.string("constant_string")
		if err != nil {
			return nil, err
		}
		return value.String(s), nil
	default:
		return nil, r.fail("constant_tag", fmt.Errorf("unknown tag 0x%02x", tag))
	}
}

func (r *Reader) upvalues() ([]UpvalueDesc, error) {
	count, err := r.uint32("upvalue_count")
	if err != nil {
		return nil, err
	}
	ups := make([]UpvalueDesc, 0, count)
	for i := uint32(0); i < count; i++ {
		inStack, err := r.byte("upvalue_in_stack")
		if err != nil {
			return nil, err
		}
		idx, err := r.byte("upvalue_index")
		if err != nil {
			return nil, err
		}
		ups = append(ups, UpvalueDesc{InStack: inStack != 0, Index: idx})
	}
	return ups, nil
}

func (r *Reader) protos(parentSource string) ([]*Prototype, error) {
	count, err := r.uint32("proto_count")
	if err != nil {
		return nil, err
	}
	protos := make([]*Prototype, 0, count)
	for i := uint32(0); i < count; i++ {
		p, err := r.prototype(parentSource)
		if err != nil {
			return nil, err
		}
		protos = append(protos, p)
	}
	return protos, nil
}

func (r *Reader) lineInfo() ([]uint32, error) {
	count, err := r.uint32("line_info_count")
	if err != nil {
		return nil, err
	}
	lines := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		n, err := r.uint32("line_info")
		if err != nil {
			return nil, err
		}
		lines = append(lines, n)
	}
	return lines, nil
}

func (r *Reader) localVars() ([]LocalVar, error) {
	count, err := r.uint32("local_var_count")
	if err != nil {
		return nil, err
	}
	vars := make([]LocalVar, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.string("local_var_name")
		if err != nil {
			return nil, err
		}
		start, err := r.uint32("local_var_start_pc")
		if err != nil {
			return nil, err
		}
		end, err := r.uint32("local_var_end_pc")
		if err != nil {
			return nil, err
		}
		vars = append(vars, LocalVar{Name: name, StartPC: start, EndPC: end})
	}
	return vars, nil
}

func (r *Reader) upvalueNames() ([]string, error) {
	count, err := r.uint32("upvalue_name_count")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		name, err := r.string("upvalue_name")
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
