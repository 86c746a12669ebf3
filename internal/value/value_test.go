package value

import (
	"errors"
	"math"
	"testing"
)

func TestTruthiness(t *testing.T) {
	falsy := []Value{Nil, Bool(false)}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Errorf("IsTruthy(%v) = true, want false", v)
		}
	}

	truthy := []Value{
		Bool(true),
		Integer(0),
		Float(0.0),
		String(""),
		NewTable(0),
	}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Errorf("IsTruthy(%#v) = false, want true", v)
		}
	}
}

func TestIntegerFloatEquality(t *testing.T) {
	cases := []struct {
		i    int64
		f    float64
		want bool
	}{
		{0, 0.0, true},
		{1, 1.0, true},
		{-3, -3.0, true},
		{1, 1.5, false},
		{math.MaxInt64, math.MaxInt64, false}, // the float rounds to 2^63
	}
	for _, c := range cases {
		if got := Equal(Integer(c.i), Float(c.f)); got != c.want {
			t.Errorf("Equal(Integer(%d), Float(%v)) = %v, want %v", c.i, c.f, got, c.want)
		}
		if got := Equal(Float(c.f), Integer(c.i)); got != c.want {
			t.Errorf("Equal(Float(%v), Integer(%d)) = %v, want %v", c.f, c.i, got, c.want)
		}
	}
}

func TestEqualIdentity(t *testing.T) {
	t1 := NewTable(0)
	t2 := NewTable(0)
	if !Equal(t1, t1) {
		t.Error("a table must equal itself")
	}
	if Equal(t1, t2) {
		t.Error("distinct tables must not be equal")
	}
	if Equal(String("1"), Integer(1)) {
		t.Error("string and number must not be equal")
	}
}

func TestLess(t *testing.T) {
	lt, err := Less(Integer(1), Float(1.5))
	if err != nil || !lt {
		t.Errorf("1 < 1.5 = %v, %v", lt, err)
	}
	lt, err = Less(Float(2.0), Integer(2))
	if err != nil || lt {
		t.Errorf("2.0 < 2 = %v, %v", lt, err)
	}
	lt, err = Less(String("abc"), String("abd"))
	if err != nil || !lt {
		t.Errorf(`"abc" < "abd" = %v, %v`, lt, err)
	}
	le, err := LessEqual(Integer(3), Float(3.0))
	if err != nil || !le {
		t.Errorf("3 <= 3.0 = %v, %v", le, err)
	}

	if _, err := Less(Integer(1), String("2")); err == nil {
		t.Error("number < string must fail")
	}
	var cmpErr *CompareError
	_, err = Less(Bool(true), Bool(false))
	if !errors.As(err, &cmpErr) {
		t.Errorf("bool comparison: got %v, want CompareError", err)
	}
}

func TestToInteger(t *testing.T) {
	if i, err := ToInteger(Integer(7)); err != nil || i != 7 {
		t.Errorf("ToInteger(7) = %d, %v", i, err)
	}
	if i, err := ToInteger(Float(42.0)); err != nil || i != 42 {
		t.Errorf("ToInteger(42.0) = %d, %v", i, err)
	}
	if _, err := ToInteger(Float(1.5)); !errors.Is(err, ErrNonIntegral) {
		t.Errorf("ToInteger(1.5): got %v, want ErrNonIntegral", err)
	}
	if i, err := ToInteger(String("12")); err != nil || i != 12 {
		t.Errorf(`ToInteger("12") = %d, %v`, i, err)
	}
	if _, err := ToInteger(String("frog")); !errors.Is(err, ErrParse) {
		t.Errorf(`ToInteger("frog"): got %v, want ErrParse`, err)
	}
	if _, err := ToInteger(Nil); err == nil {
		t.Error("ToInteger(nil) must fail")
	}
}

func TestArithmeticKinds(t *testing.T) {
	// integer + integer stays integer
	v, err := Add(Integer(1), Integer(2))
	if err != nil {
		t.Fatal(err)
	}
	if v != Integer(3) {
		t.Errorf("1 + 2 = %#v, want Integer(3)", v)
	}

	// integer overflow wraps
	v, err = Add(Integer(math.MaxInt64), Integer(1))
	if err != nil {
		t.Fatal(err)
	}
	if v != Integer(math.MinInt64) {
		t.Errorf("MaxInt64 + 1 = %#v, want wrap to MinInt64", v)
	}

	// mixed operands go float
	v, err = Add(Integer(1), Float(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if v != Float(1.5) {
		t.Errorf("1 + 0.5 = %#v, want Float(1.5)", v)
	}

	// numeric strings coerce
	v, err = Mul(String("3"), Integer(4))
	if err != nil {
		t.Fatal(err)
	}
	if v != Float(12) {
		t.Errorf(`"3" * 4 = %#v, want Float(12)`, v)
	}

	// '/' is always float
	v, err = Div(Integer(1), Integer(2))
	if err != nil {
		t.Fatal(err)
	}
	if v != Float(0.5) {
		t.Errorf("1 / 2 = %#v, want Float(0.5)", v)
	}

	// '^' is true exponentiation
	v, err = Pow(Integer(2), Integer(10))
	if err != nil {
		t.Fatal(err)
	}
	if v != Float(1024) {
		t.Errorf("2 ^ 10 = %#v, want Float(1024)", v)
	}

	if _, err := Add(NewTable(0), Integer(1)); err == nil {
		t.Error("table + number must fail")
	}
}

func TestFloorDivMod(t *testing.T) {
	cases := []struct {
		a, b     int64
		div, mod int64
	}{
		{7, 2, 3, 1},
		{-7, 2, -4, 1},
		{7, -2, -4, -1},
		{-7, -2, 3, -1},
	}
	for _, c := range cases {
		d, err := IDiv(Integer(c.a), Integer(c.b))
		if err != nil {
			t.Fatal(err)
		}
		if d != Integer(c.div) {
			t.Errorf("%d // %d = %#v, want %d", c.a, c.b, d, c.div)
		}
		m, err := Mod(Integer(c.a), Integer(c.b))
		if err != nil {
			t.Fatal(err)
		}
		if m != Integer(c.mod) {
			t.Errorf("%d %% %d = %#v, want %d", c.a, c.b, m, c.mod)
		}
	}

	if _, err := IDiv(Integer(1), Integer(0)); !errors.Is(err, ErrZeroDiv) {
		t.Errorf("1 // 0: got %v, want ErrZeroDiv", err)
	}
	if _, err := Mod(Integer(1), Integer(0)); !errors.Is(err, ErrZeroDiv) {
		t.Errorf("1 %% 0: got %v, want ErrZeroDiv", err)
	}

	// float floor division
	v, err := IDiv(Float(7), Float(2))
	if err != nil {
		t.Fatal(err)
	}
	if v != Float(3) {
		t.Errorf("7.0 // 2.0 = %#v, want Float(3)", v)
	}
}

func TestBitwise(t *testing.T) {
	v, _ := Band(Integer(0b1100), Integer(0b1010))
	if v != Integer(0b1000) {
		t.Errorf("band = %#v", v)
	}
	v, _ = Bor(Integer(0b1100), Integer(0b1010))
	if v != Integer(0b1110) {
		t.Errorf("bor = %#v", v)
	}
	v, _ = Bxor(Integer(0b1100), Integer(0b1010))
	if v != Integer(0b0110) {
		t.Errorf("bxor = %#v", v)
	}

	// shifts: >= 64 zeroes out, negative reverses
	v, _ = Shl(Integer(1), Integer(70))
	if v != Integer(0) {
		t.Errorf("1 << 70 = %#v, want 0", v)
	}
	v, _ = Shl(Integer(8), Integer(-2))
	if v != Integer(2) {
		t.Errorf("8 << -2 = %#v, want 2", v)
	}
	v, _ = Shr(Integer(-1), Integer(1))
	if v != Integer(math.MaxInt64) {
		t.Errorf("-1 >> 1 = %#v, want logical shift", v)
	}

	// bitwise on a fractional float is an error
	if _, err := Band(Float(1.5), Integer(1)); err == nil {
		t.Error("1.5 & 1 must fail")
	}
	// but an integral float coerces
	v, err := Band(Float(6.0), Integer(3))
	if err != nil || v != Integer(2) {
		t.Errorf("6.0 & 3 = %#v, %v", v, err)
	}
}

func TestUnary(t *testing.T) {
	v, _ := Neg(Integer(5))
	if v != Integer(-5) {
		t.Errorf("-5 = %#v", v)
	}
	v, _ = Neg(Float(2.5))
	if v != Float(-2.5) {
		t.Errorf("-2.5 = %#v", v)
	}
	if _, err := Neg(String("5")); err == nil {
		t.Error("unary minus on a string must fail in-kind")
	}
	v, _ = BNot(Integer(0))
	if v != Integer(-1) {
		t.Errorf("~0 = %#v", v)
	}
}

func TestToString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Nil, "nil"},
		{Bool(true), "true"},
		{Integer(42), "42"},
		{Float(1.5), "1.5"},
		{Float(1.0), "1.0"},
		{Float(-3.0), "-3.0"},
		{String("hi"), "hi"},
	}
	for _, c := range cases {
		if got := ToString(c.v); got != c.want {
			t.Errorf("ToString(%#v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestTable(t *testing.T) {
	tbl := NewTable(0)
	if err := tbl.Set(Integer(1), String("a")); err != nil {
		t.Fatal(err)
	}

	// t[1.0] addresses the same slot as t[1]
	if got := tbl.Get(Float(1.0)); got != String("a") {
		t.Errorf("t[1.0] = %#v, want \"a\"", got)
	}
	if err := tbl.Set(Float(2.0), String("b")); err != nil {
		t.Fatal(err)
	}
	if got := tbl.Get(Integer(2)); got != String("b") {
		t.Errorf("t[2] = %#v, want \"b\"", got)
	}
	if tbl.Len() != 2 {
		t.Errorf("len = %d, want 2", tbl.Len())
	}

	// storing nil removes
	if err := tbl.Set(Integer(1), Nil); err != nil {
		t.Fatal(err)
	}
	if !IsNil(tbl.Get(Integer(1))) {
		t.Error("t[1] should be nil after removal")
	}
	if tbl.Len() != 1 {
		t.Errorf("len = %d, want 1", tbl.Len())
	}

	// nil and NaN keys are rejected
	if err := tbl.Set(Nil, Integer(1)); err == nil {
		t.Error("nil key must be rejected")
	}
	if err := tbl.Set(Float(math.NaN()), Integer(1)); err == nil {
		t.Error("NaN key must be rejected")
	}
	// reads with those keys just miss
	if !IsNil(tbl.Get(Nil)) {
		t.Error("t[nil] must read as nil")
	}
}

func TestFloatingPointByte(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 15, 100, 1000, 5000} {
		fb := Int2FB(n)
		back := FB2Int(fb)
		if back < n {
			t.Errorf("FB2Int(Int2FB(%d)) = %d, must not shrink", n, back)
		}
	}
	if FB2Int(0) != 0 || FB2Int(7) != 7 {
		t.Error("small values are identity")
	}
}
