package vm

import (
	"testing"

	"github.com/zboralski/galua/internal/value"
)

func TestPushPop(t *testing.T) {
	s := New()
	if s.frame().isValid(1) {
		t.Error("index 1 valid on empty stack")
	}
	s.Push(value.String("123"))
	if !s.frame().isValid(1) {
		t.Error("index 1 invalid after push")
	}
	if v := s.Pop(); v != value.String("123") {
		t.Errorf("pop = %#v", v)
	}
	if s.frame().isValid(1) {
		t.Error("index 1 valid after pop")
	}

	s.Push(value.Integer(1))
	s.Push(value.Integer(2))
	if !s.frame().isValid(2) || !s.frame().isValid(-2) {
		t.Error("positive and negative indices should both resolve")
	}
	if got := s.Get(-1); got != value.Integer(2) {
		t.Errorf("Get(-1) = %#v", got)
	}
	if got := s.Get(1); got != value.Integer(1) {
		t.Errorf("Get(1) = %#v", got)
	}
}

func TestRotate(t *testing.T) {
	s := New()
	for i := 1; i <= 5; i++ {
		s.Push(value.Integer(int64(i)))
	}

	s.Rotate(2, 1)
	want := []int64{4, 3, 2, 5, 1}
	for _, w := range want {
		if v := s.Pop(); v != value.Integer(w) {
			t.Fatalf("after Rotate(2, 1): pop = %#v, want %d", v, w)
		}
	}

	for i := 1; i <= 5; i++ {
		s.Push(value.Integer(int64(i)))
	}
	s.Rotate(2, -1)
	want = []int64{2, 5, 4, 3, 1}
	for _, w := range want {
		if v := s.Pop(); v != value.Integer(w) {
			t.Fatalf("after Rotate(2, -1): pop = %#v, want %d", v, w)
		}
	}
}

func TestSetTop(t *testing.T) {
	s := New()
	for i := 1; i <= 5; i++ {
		s.Push(value.Integer(int64(i)))
	}
	s.SetTop(2)
	if v := s.Pop(); v != value.Integer(2) {
		t.Errorf("pop = %#v, want 2", v)
	}
	if v := s.Pop(); v != value.Integer(1) {
		t.Errorf("pop = %#v, want 1", v)
	}

	s = New()
	s.Push(value.Integer(1))
	s.SetTop(2)
	if s.Top() != 2 {
		t.Errorf("top = %d, want 2", s.Top())
	}
	if v := s.Pop(); !value.IsNil(v) {
		t.Errorf("grown slot = %#v, want nil", v)
	}
}

func TestCheckGrows(t *testing.T) {
	s := New()
	s.CheckStack(100)
	for i := 0; i < 100; i++ {
		s.Push(value.Integer(int64(i)))
	}
	if s.Top() != 100 {
		t.Errorf("top = %d", s.Top())
	}
}

func TestInsertRemove(t *testing.T) {
	s := New()
	for i := 1; i <= 4; i++ {
		s.Push(value.Integer(int64(i)))
	}
	s.Insert(2) // 4 moves to index 2
	got := []value.Value{s.Get(1), s.Get(2), s.Get(3), s.Get(4)}
	want := []int64{1, 4, 2, 3}
	for i, w := range want {
		if got[i] != value.Integer(w) {
			t.Fatalf("after Insert(2): slot %d = %#v, want %d", i+1, got[i], w)
		}
	}

	s.Remove(2)
	want = []int64{1, 2, 3}
	for i, w := range want {
		if v := s.Get(i + 1); v != value.Integer(w) {
			t.Fatalf("after Remove(2): slot %d = %#v, want %d", i+1, v, w)
		}
	}
	if s.Top() != 3 {
		t.Errorf("top = %d, want 3", s.Top())
	}
}

func TestCloseUpvaluesDetachesRegister(t *testing.T) {
	f := newFrame(4)
	f.push(value.Integer(7))
	c := f.cellAt(0)
	f.openUV[0] = c

	f.closeUpvalues(0)
	if c.v != value.Integer(7) {
		t.Errorf("closed cell = %#v, want 7", c.v)
	}
	// register writes no longer reach the closed cell
	f.set(1, value.Integer(99))
	if c.v != value.Integer(7) {
		t.Errorf("closed cell mutated by register write: %#v", c.v)
	}
	if len(f.openUV) != 0 {
		t.Error("openUV not cleared")
	}
}
