package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"dict2file/internal/ir"
)

func TestClassify(t *testing.T) {
	b := ir.NewBuilder("m")
	x, y, n := b.Opaque("%x"), b.Opaque("%y"), b.Const(4)
	i32p := ir.Pointer(ir.I32)

	tests := []struct {
		name   string
		callee *ir.Function
		conv   ir.CallingConv
		args   []*ir.Value
		want   Kind
		ok     bool
	}{
		{"strcmp", &ir.Function{Name: "strcmp", Sig: ir.StrcmpSig}, ir.CallConvDefault, []*ir.Value{x, y}, KindStrcmp, true},
		{"strncmp", &ir.Function{Name: "strncmp", Sig: ir.StrncmpSig}, ir.CallConvDefault, []*ir.Value{x, y, n}, KindStrncmp, true},
		{"memcmp opaque pointers", &ir.Function{Name: "memcmp", Sig: ir.Signature{Params: []ir.Type{ir.Ptr, ir.Ptr, ir.I64}, Result: ir.I32}}, ir.CallConvDefault, []*ir.Value{x, y, n}, KindMemcmp, true},
		{"memcmp on words", &ir.Function{Name: "memcmp", Sig: ir.Signature{Params: []ir.Type{i32p, i32p, ir.I64}, Result: ir.I32}}, ir.CallConvDefault, []*ir.Value{x, y, n}, KindMemcmp, true},
		{"memcpy intrinsic", &ir.Function{Name: MemcpyIntrinsic, Sig: ir.MemcpySig}, ir.CallConvDefault, []*ir.Value{x, y, n, b.Const(0)}, KindMemcpy, true},
		{"opaque memcpy intrinsic", &ir.Function{Name: MemcpyIntrinsicOpaque, Sig: ir.Signature{Params: []ir.Type{ir.Ptr, ir.Ptr, ir.I64, ir.I1}, Result: ir.Void}}, ir.CallConvDefault, []*ir.Value{x, y, n, b.Const(0)}, KindMemcpy, true},

		{"indirect", nil, ir.CallConvDefault, []*ir.Value{x, y}, "", false},
		{"unknown name", &ir.Function{Name: "strcoll", Sig: ir.StrcmpSig}, ir.CallConvDefault, []*ir.Value{x, y}, "", false},
		{"case sensitive name", &ir.Function{Name: "StrCmp", Sig: ir.StrcmpSig}, ir.CallConvDefault, []*ir.Value{x, y}, "", false},
		{"libc memcpy", &ir.Function{Name: "memcpy", Sig: ir.MemcpySig}, ir.CallConvDefault, []*ir.Value{x, y, n}, "", false},
		{"fastcc", &ir.Function{Name: "strcmp", Sig: ir.StrcmpSig}, ir.CallConvOther, []*ir.Value{x, y}, "", false},
		{"user strcmp on ints", &ir.Function{Name: "strcmp", Sig: ir.Signature{Params: []ir.Type{ir.I32, ir.I32}, Result: ir.I32}}, ir.CallConvDefault, []*ir.Value{x, y}, "", false},
		{"strcmp on words", &ir.Function{Name: "strcmp", Sig: ir.Signature{Params: []ir.Type{i32p, i32p}, Result: ir.I32}}, ir.CallConvDefault, []*ir.Value{x, y}, "", false},
		{"mismatched pointers", &ir.Function{Name: "memcmp", Sig: ir.Signature{Params: []ir.Type{ir.I8Ptr, i32p, ir.I64}, Result: ir.I32}}, ir.CallConvDefault, []*ir.Value{x, y, n}, "", false},
		{"void result", &ir.Function{Name: "strcmp", Sig: ir.Signature{Params: []ir.Type{ir.I8Ptr, ir.I8Ptr}, Result: ir.Void}}, ir.CallConvDefault, []*ir.Value{x, y}, "", false},
		{"variadic", &ir.Function{Name: "strcmp", Sig: ir.Signature{Params: []ir.Type{ir.I8Ptr, ir.I8Ptr}, Result: ir.I32, Variadic: true}}, ir.CallConvDefault, []*ir.Value{x, y}, "", false},
		{"extra parameter", &ir.Function{Name: "strcmp", Sig: ir.StrncmpSig}, ir.CallConvDefault, []*ir.Value{x, y, n}, "", false},
		{"pointer length", &ir.Function{Name: "strncmp", Sig: ir.Signature{Params: []ir.Type{ir.I8Ptr, ir.I8Ptr, ir.I8Ptr}, Result: ir.I32}}, ir.CallConvDefault, []*ir.Value{x, y, n}, "", false},
		{"short copy", &ir.Function{Name: MemcpyIntrinsic, Sig: ir.Signature{Params: []ir.Type{ir.I8Ptr, ir.I8Ptr}, Result: ir.Void}}, ir.CallConvDefault, []*ir.Value{x, y}, "", false},
		{"missing operand", &ir.Function{Name: "strncmp", Sig: ir.StrncmpSig}, ir.CallConvDefault, []*ir.Value{x, y}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(&ir.Call{Callee: tt.callee, Conv: tt.conv, Args: tt.args})
			if got != tt.want || ok != tt.ok {
				t.Errorf("Classify() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestComparisonOf(t *testing.T) {
	b := ir.NewBuilder("m")
	x, y, n := b.Opaque("%x"), b.Opaque("%y"), b.Const(8)
	call := &ir.Call{Args: []*ir.Value{x, y, n}}

	if got := comparisonOf(KindStrcmp, call); got.Len != nil {
		t.Errorf("unbounded comparison got length %v", got.Len)
	}
	got := comparisonOf(KindMemcmp, call)
	if got.A != x || got.B != y || got.Len != n {
		t.Errorf("comparisonOf = %+v", got)
	}
	if c := copyOf(call); c.Dst != x || c.Src != y || c.Len != n {
		t.Errorf("copyOf = %+v", c)
	}
}

func TestResolverPriority(t *testing.T) {
	b := ir.NewBuilder("m")
	g := b.Global("g", []byte("global\x00"))
	bind := NewBindings()
	r := NewResolver(bind)

	lit := b.Literal("lit")
	lit.Addr = &ir.Address{Global: g, Static: true}
	bind.Bind(lit.ID, []byte("bound"))
	if got := r.Resolve(lit); got.Source != SourceLiteral || string(got.Bytes) != "lit" {
		t.Errorf("literal: %+v", got)
	}

	empty := b.Literal("")
	empty.Addr = &ir.Address{Global: g, Static: true}
	if got := r.Resolve(empty); got.Source != SourceGlobal {
		t.Errorf("empty literal should fall through to global: %+v", got)
	}

	addr := b.GlobalAddr(g, true)
	first, second := r.Resolve(addr), r.Resolve(addr)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("global resolution not idempotent:\n%s", diff)
	}
	first.Bytes[0] = 'X'
	if string(g.Init) != "global\x00" {
		t.Error("resolution aliases the global initializer")
	}

	v := b.Opaque("%v")
	bind.Bind(v.ID, nil)
	if got := r.Resolve(v); got.Known() {
		t.Errorf("empty binding should be absent: %+v", got)
	}
	bind.Bind(v.ID, []byte("x"))
	if got := r.Resolve(v); got.Source != SourceBinding {
		t.Errorf("binding: %+v", got)
	}
	if got := r.Static(v); got.Known() {
		t.Errorf("Static must ignore bindings: %+v", got)
	}
	if got := NewResolver(nil).Resolve(v); got.Known() {
		t.Errorf("nil table: %+v", got)
	}
}

func TestResolverBind(t *testing.T) {
	b := ir.NewBuilder("m")
	r := NewResolver(NewBindings())
	dst := b.Opaque("%dst")

	tests := []struct {
		name string
		src  *ir.Value
		n    uint64
		want string
		ok   bool
	}{
		{"terminator appended", b.Literal("abc"), 4, "abc\x00", true},
		{"exact length", b.Literal("abc"), 3, "abc", true},
		{"longer copy", b.Literal("abc"), 16, "abc", true},
		{"global source", b.GlobalAddr(b.Global("s", []byte("xy\x00")), true), 3, "xy\x00", true},
		{"unknown source", b.Opaque("%src"), 4, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Bind(Copy{Dst: dst, Src: tt.src, Len: b.Const(tt.n)})
			if ok != tt.ok || string(got) != tt.want {
				t.Errorf("Bind() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestReconcile(t *testing.T) {
	b := ir.NewBuilder("m")
	tests := []struct {
		name    string
		kind    Kind
		content string
		n       *ir.Value
		want    string
		eff     int
		ok      bool
	}{
		{"strcmp adds terminator", KindStrcmp, "abc", nil, "abc\x00", 4, true},
		{"strcmp truncates at first terminator", KindStrcmp, "ab\x00cd", nil, "ab\x00", 3, true},
		{"strcmp with terminated content", KindStrcmp, "abc\x00", nil, "abc\x00", 4, true},
		{"strncmp length plus one", KindStrncmp, "abc", b.Const(4), "abc\x00", 4, true},
		{"strncmp exact length", KindStrncmp, "abc", b.Const(3), "abc\x00", 4, true},
		{"strncmp shorter length keeps content", KindStrncmp, "abcdef", b.Const(3), "abcdef\x00", 4, true},
		{"strncmp runtime length", KindStrncmp, "abc", b.Opaque("%n"), "abc\x00", 4, true},
		{"memcmp length plus one", KindMemcmp, "abc", b.Const(4), "abc\x00", 4, true},
		{"memcmp keeps zeros", KindMemcmp, "a\x00b\x00", b.Const(4), "a\x00b\x00", 4, true},
		{"memcmp too short", KindMemcmp, "ab", b.Const(2), "ab", 2, false},
		{"clamped", KindMemcmp, "0123456789abcdef0123456789abcdefXYZ", b.Const(35), "0123456789abcdef0123456789abcdef", 35, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := Reconcile(tt.kind, []byte(tt.content), tt.n, DefaultBounds())
			if ok != tt.ok || string(e.Content) != tt.want || e.Effective != tt.eff {
				t.Errorf("Reconcile() = %q eff %d, %v; want %q eff %d, %v",
					e.Content, e.Effective, ok, tt.want, tt.eff, tt.ok)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %q", e.Kind)
			}
		})
	}
}

func TestReconcileDoesNotAlias(t *testing.T) {
	in := []byte("abc")
	e, _ := Reconcile(KindStrcmp, in[:3:3], nil, DefaultBounds())
	e.Content[0] = 'X'
	if string(in) != "abc" {
		t.Errorf("input modified: %q", in)
	}
}

func TestBounds(t *testing.T) {
	if err := DefaultBounds().Validate(); err != nil {
		t.Errorf("default bounds invalid: %v", err)
	}
	for _, b := range []Bounds{{0, 10}, {5, 4}} {
		if err := b.Validate(); err == nil {
			t.Errorf("%+v should be invalid", b)
		}
	}
	if !DefaultBounds().Contains(3) || DefaultBounds().Contains(33) {
		t.Error("Contains disagrees with MinLen/MaxLen")
	}
}

func TestIgnoreList(t *testing.T) {
	l := DefaultIgnoreList()
	for name, want := range map[string]bool{
		"":                       true,
		"main":                   false,
		"parse_header":           false,
		"asan.module_ctor":       true,
		"sancov.module_ctor":     true,
		"__afl_auto_init":        true,
		"_ZN4llvm10DebugLocC2":   true,
		"LLVMFuzzerTestOneInput": false,
		"LLVMFuzzerInitialize":   true,
	} {
		if got := l.Ignored(name); got != want {
			t.Errorf("Ignored(%q) = %v, want %v", name, got, want)
		}
	}

	extended := l.With("my_")
	if !extended.Ignored("my_helper") || l.Ignored("my_helper") {
		t.Error("With must not modify the receiver")
	}
}

func TestCachedDemangle(t *testing.T) {
	if got := CachedDemangle("_Z5parsePKc"); got != "parse(char const*)" {
		t.Errorf("CachedDemangle = %q", got)
	}
	if got := CachedDemangle("plain_c"); got != "plain_c" {
		t.Errorf("CachedDemangle = %q", got)
	}
}
