package reactive

import "testing"

func TestIdentical(t *testing.T) {
	shared := []int{1, 2, 3}
	m := map[string]int{"a": 1}
	ch := make(chan int)
	type pair struct{ A, B int }
	type withSlice struct{ Items []int }
	var nilErr error

	tests := []struct {
		name string
		eq   bool
	}{
		{"ints", identical(1, 1)},
		{"strings", identical("a", "a")},
		{"floats", identical(1.5, 1.5)},
		{"bools", identical(true, true)},
		{"structs", identical(pair{1, 2}, pair{1, 2})},
		{"same slice", identical(shared, shared)},
		{"same map", identical(m, m)},
		{"same chan", identical(ch, ch)},
		{"nil interfaces", identical[error](nilErr, nil)},
	}
	for _, tt := range tests {
		if !tt.eq {
			t.Errorf("%s: expected identical", tt.name)
		}
	}

	differ := []struct {
		name string
		eq   bool
	}{
		{"ints", identical(1, 2)},
		{"structs", identical(pair{1, 2}, pair{2, 1})},
		{"copied slice", identical(shared, []int{1, 2, 3})},
		{"resliced", identical(shared, shared[:2])},
		{"copied map", identical(m, map[string]int{"a": 1})},
		{"funcs", identical(func() {}, func() {})},
		{"uncomparable structs", identical(withSlice{shared}, withSlice{shared})},
		{"mixed dynamic types", identical[any](1, "1")},
		{"nil vs value", identical[any](nil, 0)},
	}
	for _, tt := range differ {
		if tt.eq {
			t.Errorf("%s: expected not identical", tt.name)
		}
	}
}

func TestIdenticalPointers(t *testing.T) {
	a, b := new(int), new(int)
	if !identical(a, a) {
		t.Error("same pointer should be identical")
	}
	if identical(a, b) {
		t.Error("distinct pointers should differ even with equal targets")
	}
}

func TestIdenticalNaN(t *testing.T) {
	var nan float64
	nan = nan / nan
	if identical(nan, nan) {
		t.Error("NaN is never equal to itself, so a NaN write always notifies")
	}
}

func TestIdenticalFuncs(t *testing.T) {
	f := func() {}
	if identical(f, f) {
		t.Error("a func is never identical, even to itself")
	}

	rt := NewRuntime()
	handler := NewSignal(f, WithRuntime(rt))
	runs := 0
	CreateEffect(func() Cleanup {
		_ = handler.Get()
		runs++
		return nil
	}, WithRuntime(rt))

	if !handler.Set(f) {
		t.Error("writing the same func should count as a change")
	}
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}
