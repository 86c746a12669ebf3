package value

// Equal implements '==': integers and floats compare numerically, strings
// byte-compare, tables and functions compare by identity. Mixed other types
// are simply unequal, never an error.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case NilType:
		return IsNil(b)
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Integer:
		switch y := b.(type) {
		case Integer:
			return x == y
		case Float:
			i, err := floatToInteger(float64(y))
			return err == nil && int64(x) == i
		}
		return false
	case Float:
		switch y := b.(type) {
		case Integer:
			i, err := floatToInteger(float64(x))
			return err == nil && i == int64(y)
		case Float:
			return x == y
		}
		return false
	case String:
		y, ok := b.(String)
		return ok && x == y
	default:
		// tables, functions: reference identity
		return a == b
	}
}

// Less implements '<'. Defined between numbers and between strings only;
// anything else is a comparison error.
func Less(a, b Value) (bool, error) {
	switch x := a.(type) {
	case Integer:
		switch y := b.(type) {
		case Integer:
			return x < y, nil
		case Float:
			return float64(x) < float64(y), nil
		}
	case Float:
		switch y := b.(type) {
		case Integer:
			return float64(x) < float64(y), nil
		case Float:
			return x < y, nil
		}
	case String:
		if y, ok := b.(String); ok {
			return x < y, nil
		}
	}
	return false, &CompareError{Left: a.TypeName(), Right: b.TypeName()}
}

// LessEqual implements '<='.
func LessEqual(a, b Value) (bool, error) {
	if Equal(a, b) {
		return true, nil
	}
	return Less(a, b)
}
