package base

import (
	"bytes"
	"testing"

	"github.com/zboralski/galua/internal/builtin"
	"github.com/zboralski/galua/internal/value"
	"github.com/zboralski/galua/internal/vm"
)

func newState(t *testing.T) (*vm.State, *bytes.Buffer) {
	t.Helper()
	st := vm.New()
	builtin.Install(st)
	var buf bytes.Buffer
	st.SetOutput(&buf)
	return st, &buf
}

func call(t *testing.T, st *vm.State, name string, nret int, args ...value.Value) {
	t.Helper()
	st.Push(st.Globals().Get(value.String(name)))
	for _, a := range args {
		st.Push(a)
	}
	if err := st.Call(len(args), nret); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

func TestPrint(t *testing.T) {
	st, buf := newState(t)
	call(t, st, "print", 0, value.Integer(10), value.Integer(20), value.Integer(30))
	if got := buf.String(); got != "10 20 30\n" {
		t.Errorf("print output = %q, want \"10 20 30\\n\"", got)
	}

	buf.Reset()
	call(t, st, "print", 0)
	if got := buf.String(); got != "\n" {
		t.Errorf("print() output = %q, want newline", got)
	}
}

func TestType(t *testing.T) {
	st, _ := newState(t)
	cases := []struct {
		arg  value.Value
		want string
	}{
		{value.Nil, "nil"},
		{value.Bool(true), "boolean"},
		{value.Integer(1), "number"},
		{value.Float(1.5), "number"},
		{value.String("x"), "string"},
		{value.NewTable(0), "table"},
	}
	for _, c := range cases {
		call(t, st, "type", 1, c.arg)
		if v := st.Pop(); v != value.String(c.want) {
			t.Errorf("type(%#v) = %#v, want %q", c.arg, v, c.want)
		}
	}
}

func TestTostring(t *testing.T) {
	st, _ := newState(t)
	call(t, st, "tostring", 1, value.Float(2.0))
	if v := st.Pop(); v != value.String("2.0") {
		t.Errorf("tostring(2.0) = %#v, want \"2.0\"", v)
	}
	call(t, st, "tostring", 1, value.Nil)
	if v := st.Pop(); v != value.String("nil") {
		t.Errorf("tostring(nil) = %#v", v)
	}
}
