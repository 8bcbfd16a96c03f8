package reactive

import "reflect"

// identical reports whether a and b are the same value by identity.
//
// Comparable values use ==. Slices are identical when they share the same
// backing array, length and capacity; maps and channels when they are the
// same reference. Values with no identity (funcs, and structs or arrays that
// hold uncomparable fields) are never identical, so writing one always
// notifies. Contents are never compared.
func identical[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	}

	ia, ib := any(a), any(b)
	if ia == nil || ib == nil {
		return ia == nil && ib == nil
	}
	va, vb := reflect.ValueOf(ia), reflect.ValueOf(ib)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len() && va.Cap() == vb.Cap()
	case reflect.Map, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	case reflect.Func:
		return false
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return ia == ib
}
