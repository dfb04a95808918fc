package types

import "testing"

func TestTypeStrings(t *testing.T) {
	testCases := []struct {
		typ      Type
		expected string
	}{
		{Void{}, "void"},
		{Label{}, "label"},
		{Time{}, "time"},
		{Int{Width: 1}, "i1"},
		{Int{Width: 32}, "i32"},
		{Logic{Width: 4}, "n4"},
		{Signal{Elem: Int{Width: 8}}, "i8$"},
		{Pointer{Elem: Int{Width: 8}}, "i8*"},
		{Array{Len: 4, Elem: Int{Width: 8}}, "[4 x i8]"},
		{Struct{Fields: []Type{Int{Width: 8}, Int{Width: 1}}}, "{i8, i1}"},
	}

	for _, tc := range testCases {
		if got := tc.typ.String(); got != tc.expected {
			t.Errorf("%#v.String() = %q, expected %q", tc.typ, got, tc.expected)
		}
	}
}

// TestStructuralEquality asserts testable property 3: constructing the same
// type twice yields equal types; unequal types never compare equal.
func TestStructuralEquality(t *testing.T) {
	a := Array{Len: 2, Elem: Signal{Elem: Int{Width: 8}}}
	b := Array{Len: 2, Elem: Signal{Elem: Int{Width: 8}}}
	if !a.Equal(b) {
		t.Fatalf("expected %v to equal %v", a, b)
	}

	c := Array{Len: 2, Elem: Signal{Elem: Int{Width: 16}}}
	if a.Equal(c) {
		t.Fatalf("expected %v to not equal %v", a, c)
	}

	if (Int{Width: 8}).Equal(Logic{Width: 8}) {
		t.Fatal("Int and Logic of the same width must not compare equal")
	}
}

func TestWidthElemFieldAccessors(t *testing.T) {
	if w, ok := WidthOf(Int{Width: 42}); !ok || w != 42 {
		t.Fatalf("WidthOf(Int{42}) = %d, %v", w, ok)
	}
	if w, ok := WidthOf(Logic{Width: 9}); !ok || w != 9 {
		t.Fatalf("WidthOf(Logic{9}) = %d, %v", w, ok)
	}
	if w, ok := WidthOf(Array{Len: 3, Elem: Int{Width: 1}}); !ok || w != 3 {
		t.Fatalf("WidthOf(Array{Len:3}) = %d, %v", w, ok)
	}
	if _, ok := WidthOf(Void{}); ok {
		t.Fatal("WidthOf(Void) should not be ok")
	}

	if elem, ok := ElemOf(Signal{Elem: Time{}}); !ok || !elem.Equal(Time{}) {
		t.Fatalf("ElemOf(Signal{Time}) = %v, %v", elem, ok)
	}
	if elem, ok := ElemOf(Pointer{Elem: Int{Width: 8}}); !ok || !elem.Equal(Int{Width: 8}) {
		t.Fatalf("ElemOf(Pointer{i8}) = %v, %v", elem, ok)
	}

	fields, ok := FieldsOf(Struct{Fields: []Type{Int{Width: 1}, Time{}}})
	if !ok || len(fields) != 2 {
		t.Fatalf("FieldsOf(Struct) = %v, %v", fields, ok)
	}
}

func TestIsSignal(t *testing.T) {
	if !IsSignal(Signal{Elem: Int{Width: 1}}) {
		t.Fatal("expected Signal(i1) to be a signal")
	}
	if IsSignal(Int{Width: 1}) {
		t.Fatal("expected Int(1) to not be a signal")
	}
}

func TestInterner(t *testing.T) {
	in := NewInterner()
	a := in.Intern(Int{Width: 32})
	b := in.Intern(Int{Width: 32})
	if a != b {
		t.Fatalf("expected interned types to share an instance: %v != %v", a, b)
	}
	if !a.Equal(b) {
		t.Fatal("interned types must still compare structurally equal")
	}
	c := in.Intern(Int{Width: 64})
	if in.Len() != 2 {
		t.Fatalf("expected 2 distinct interned types, got %d", in.Len())
	}
	_ = c
}

func TestIsLogicSymbol(t *testing.T) {
	for _, r := range nineValueSymbols {
		if !IsLogicSymbol(r) {
			t.Fatalf("expected %q to be a logic symbol", r)
		}
	}
	if IsLogicSymbol('Q') {
		t.Fatal("expected 'Q' to not be a logic symbol")
	}
}
