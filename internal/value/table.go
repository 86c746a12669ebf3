package value

import "math"

// Table is a shared mutable mapping from Value to Value. Two Table values are
// equal iff they reference the same underlying map; copies of the Value share
// storage. Keys may be any value except nil and NaN; float keys with an exact
// integer representation normalize to integer keys so that t[1] and t[1.0]
// address the same slot.
type Table struct {
	m map[Value]Value
}

func (*Table) TypeName() string { return "table" }

// NewTable creates an empty table sized for n entries.
func NewTable(n int) *Table {
	return &Table{m: make(map[Value]Value, n)}
}

// normalizeKey folds integral floats onto integer keys. Returns the usable
// key or an error for nil and NaN keys.
func normalizeKey(k Value) (Value, error) {
	switch x := k.(type) {
	case NilType:
		return nil, NewTypeError("index a table with", k)
	case Float:
		f := float64(x)
		if math.IsNaN(f) {
			return nil, &TypeError{Op: "index a table with", Type: "NaN"}
		}
		if i, err := floatToInteger(f); err == nil {
			return Integer(i), nil
		}
		return x, nil
	default:
		return k, nil
	}
}

// Get returns the value stored under k, or nil if absent. Nil and NaN keys
// never match anything.
func (t *Table) Get(k Value) Value {
	nk, err := normalizeKey(k)
	if err != nil {
		return Nil
	}
	if v, ok := t.m[nk]; ok {
		return v
	}
	return Nil
}

// Set stores v under k. Storing nil removes the entry. Nil and NaN keys are
// rejected.
func (t *Table) Set(k, v Value) error {
	nk, err := normalizeKey(k)
	if err != nil {
		return err
	}
	if IsNil(v) {
		delete(t.m, nk)
		return nil
	}
	t.m[nk] = v
	return nil
}

// SetInt stores v at an integer key, the SETLIST fast path.
func (t *Table) SetInt(k int64, v Value) {
	if IsNil(v) {
		delete(t.m, Integer(k))
		return
	}
	t.m[Integer(k)] = v
}

// Len returns the number of stored entries, the '#' convention for tables in
// this VM.
func (t *Table) Len() int {
	return len(t.m)
}
