package interp

import "testing"

func TestSizeofScalars(t *testing.T) {
	cases := []struct {
		t    *Type
		want int
	}{
		{voidType(), 0},
		{intType(1, false), 1},
		{intType(8, true), 8},
		{floatType(4), 4},
		{floatType(8), 8},
		{pointerType(intType(4, false)), 8},
		{&Type{Kind: KindFunction}, 8},
	}
	for _, c := range cases {
		if got := Sizeof(c.t); got != c.want {
			t.Errorf("Sizeof(%v) = %d, want %d", c.t.Kind, got, c.want)
		}
	}
}

func TestStructSizeAlignsToLargestField(t *testing.T) {
	// { s8 a; s32 b; } packs a at 0, pads b to offset 4, extent 8.
	st := &Type{Kind: KindStruct}
	aOff := OffsetFor(0, intType(1, false))
	st.Fields = append(st.Fields, Field{Name: "a", Type: intType(1, false), Offset: aOff})
	bOff := OffsetFor(aOff+1, intType(4, false))
	st.Fields = append(st.Fields, Field{Name: "b", Type: intType(4, false), Offset: bOff})

	if bOff != 4 {
		t.Errorf("b offset = %d, want 4 (aligned to its own size)", bOff)
	}
	if got := Sizeof(st); got != 8 {
		t.Errorf("Sizeof(struct) = %d, want 8", got)
	}
}

func TestEmptyStructSizeIsOne(t *testing.T) {
	st := &Type{Kind: KindStruct}
	if got := Sizeof(st); got != 1 {
		t.Errorf("Sizeof(empty struct) = %d, want 1", got)
	}
}

func TestCopyTypePreservesSharedStructure(t *testing.T) {
	node := &Type{Kind: KindStruct, Name: "Node"}
	node.Fields = []Field{{Name: "next", Type: pointerType(node), Offset: 0}}

	cp := CopyType(node)
	if cp == node {
		t.Fatal("CopyType returned the original node")
	}
	if cp.Fields[0].Type.Base != cp {
		t.Error("self-referential pointer field does not point back at the copied node")
	}
}

func TestResolveIncompleteReplacesSelfReference(t *testing.T) {
	placeholder := &Type{Kind: KindStruct, Name: "Node", IsIncomplete: true}
	node := &Type{Kind: KindStruct, Name: "Node"}
	node.Fields = []Field{{Name: "next", Type: placeholder, Offset: 8}}

	resolveIncomplete(node, node)

	if node.Fields[0].Type != node {
		t.Error("resolveIncomplete did not replace the incomplete placeholder with the completed type")
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	st := &Type{Kind: KindStruct}
	st.Fields = []Field{
		{Name: "x", Type: intType(4, false), Offset: 0},
		{Name: "y", Type: floatType(8), Offset: 8},
	}
	fn := &Type{Kind: KindFunction, Return: intType(4, true), Args: []*Type{pointerType(st), intType(8, false)}}

	buf := SerializeType(fn)
	got := DeserializeType(buf)

	if got.Kind != KindFunction || got.Return.Kind != KindInt || !got.Return.IsUnsigned {
		t.Fatalf("round-tripped function type mismatch: %+v", got)
	}
	if len(got.Args) != 2 || got.Args[0].Kind != KindPointer || got.Args[0].Base.Kind != KindStruct {
		t.Fatalf("round-tripped args mismatch: %+v", got.Args)
	}
	if len(got.Args[0].Base.Fields) != 2 || got.Args[0].Base.Fields[1].Offset != 8 {
		t.Fatalf("round-tripped struct fields mismatch: %+v", got.Args[0].Base.Fields)
	}
}

func TestSerializeCyclicTypeTerminates(t *testing.T) {
	node := &Type{Kind: KindStruct, Name: "Node"}
	node.Fields = []Field{{Name: "next", Type: pointerType(node), Offset: 0}}

	buf := SerializeType(node)
	if len(buf) == 0 {
		t.Fatal("serializing a cyclic type produced no bytes")
	}
	got := DeserializeType(buf)
	if got.Fields[0].Type.Base != got {
		t.Error("deserialized cyclic type did not reconstruct the self-reference")
	}
}

func TestIsNumeric(t *testing.T) {
	numeric := []*Type{intType(4, false), floatType(8), pointerType(voidType()), {Kind: KindFunction}}
	for _, ty := range numeric {
		if !IsNumeric(ty) {
			t.Errorf("IsNumeric(%v) = false, want true", ty.Kind)
		}
	}
	if IsNumeric(&Type{Kind: KindStruct}) {
		t.Error("IsNumeric(struct) = true, want false")
	}
	if IsNumeric(voidType()) {
		t.Error("IsNumeric(void) = true, want false")
	}
}
