package ir

import "testing"

func TestTypeEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same int", I32, Int(32), true},
		{"different width", I32, I64, false},
		{"typed pointers", I8Ptr, Pointer(I8), true},
		{"typed vs opaque", I8Ptr, Ptr, false},
		{"pointer vs int", I8Ptr, I64, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%s.Equal(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestIsBytePointer(t *testing.T) {
	if !I8Ptr.IsBytePointer() {
		t.Error("i8* should be a byte pointer")
	}
	if !Ptr.IsBytePointer() {
		t.Error("opaque ptr should be a byte pointer")
	}
	if Pointer(I32).IsBytePointer() {
		t.Error("i32* should not be a byte pointer")
	}
	if I8.IsBytePointer() {
		t.Error("i8 should not be a byte pointer")
	}
}

func TestSignatureString(t *testing.T) {
	if got, want := StrncmpSig.String(), "i32 (i8*, i8*, i64)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	v := Signature{Params: []Type{I8Ptr}, Result: I32, Variadic: true}
	if got, want := v.String(), "i32 (i8*, ...)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBuilderAssignsDistinctIDs(t *testing.T) {
	b := NewBuilder("m")
	seen := make(map[ValueID]bool)
	vals := []*Value{b.Opaque("x"), b.Literal("abc"), b.Const(3), b.GlobalAddr(b.Global("g", []byte("g\x00")), true)}
	for _, v := range vals {
		if v.ID == NoValue {
			t.Fatalf("value %s got NoValue", v)
		}
		if seen[v.ID] {
			t.Fatalf("duplicate ID %d", v.ID)
		}
		seen[v.ID] = true
	}
}

func TestBuilderLayout(t *testing.T) {
	b := NewBuilder("m")
	strcmp := b.Declare("strcmp", StrcmpSig)
	b.Define("main", Signature{Result: I32})
	b.Block("entry")
	b.Call(strcmp, b.Opaque("%x"), b.Literal("hi"))
	b.Block("next")
	b.Call(nil, b.Opaque("%y"))

	m := b.Module()
	if len(m.Functions) != 2 {
		t.Fatalf("functions = %d, want 2", len(m.Functions))
	}
	if !m.Function("strcmp").Decl {
		t.Error("strcmp should stay a declaration")
	}
	main := m.Function("main")
	if main.Decl || len(main.Blocks) != 2 {
		t.Fatalf("main: decl=%v blocks=%d", main.Decl, len(main.Blocks))
	}
	first := main.Blocks[0].Insts[0].Call
	if first.Callee != strcmp || len(first.Args) != 2 {
		t.Errorf("first call = %+v", first)
	}
	if main.Blocks[1].Insts[0].Call.Callee != nil {
		t.Error("indirect call should have no callee")
	}
	if got := first.Arg(5); got != nil {
		t.Errorf("Arg(5) = %v, want nil", got)
	}
}

func TestBuilderGlobalIsUnique(t *testing.T) {
	b := NewBuilder("m")
	g1 := b.Global("g", []byte("x"))
	g2 := b.Global("g", nil)
	if g1 != g2 {
		t.Error("Global should return the existing global")
	}
	if len(b.Module().Globals) != 1 {
		t.Errorf("globals = %d, want 1", len(b.Module().Globals))
	}
	if h := b.Global("h", nil); h.HasInit {
		t.Error("nil init should not set HasInit")
	}
}
