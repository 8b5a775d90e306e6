package interp

import "testing"

func lexNoErrors(t *testing.T, src string) []Token {
	t.Helper()
	c := New(Options{})
	toks := lex(c, src, "<test>")
	if c.AnyErrors() {
		e, _ := c.NextError()
		t.Fatalf("lex(%q): unexpected error: %v", src, e)
	}
	return toks
}

func TestLexIntegerLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want uint64
	}{
		{"0", 0},
		{"42", 42},
		{"0x2A", 42},
		{"0b101010", 42},
		{"052", 42}, // octal
	}
	for _, c := range cases {
		toks := lexNoErrors(t, c.src)
		if len(toks) != 1 || toks[0].Kind != TokInt {
			t.Fatalf("lex(%q) = %+v, want single TokInt", c.src, toks)
		}
		if toks[0].Int != c.want {
			t.Errorf("lex(%q).Int = %d, want %d", c.src, toks[0].Int, c.want)
		}
	}
}

func TestLexFloatLiterals(t *testing.T) {
	toks := lexNoErrors(t, "3.5")
	if len(toks) != 1 || toks[0].Kind != TokFloat || toks[0].Float != 3.5 {
		t.Fatalf("lex(3.5) = %+v", toks)
	}
	toks = lexNoErrors(t, "1e3")
	if len(toks) != 1 || toks[0].Kind != TokFloat || toks[0].Float != 1000 {
		t.Fatalf("lex(1e3) = %+v", toks)
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks := lexNoErrors(t, `"a\nb\x41\""`)
	if len(toks) != 1 || toks[0].Kind != TokString {
		t.Fatalf("lex(...) = %+v", toks)
	}
	if want := "a\nbA\""; toks[0].Str != want {
		t.Errorf("got %q, want %q", toks[0].Str, want)
	}
}

func TestLexCharLiteralFoldsBigEndian(t *testing.T) {
	toks := lexNoErrors(t, "'AB'")
	if len(toks) != 1 || toks[0].Kind != TokInt {
		t.Fatalf("lex('AB') = %+v", toks)
	}
	want := uint64('A')*256 + uint64('B')
	if toks[0].Int != want {
		t.Errorf("got %d, want %d", toks[0].Int, want)
	}
}

func TestLexSymbolLongestMatch(t *testing.T) {
	toks := lexNoErrors(t, "a<=b")
	var kinds []TokenKind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	if len(kinds) != 3 || kinds[1] != TokLe {
		t.Errorf("lex(a<=b) kinds = %v, want [ident, <=, ident]", kinds)
	}
}

func TestLexDottedIdentifierSplitsOnDot(t *testing.T) {
	toks := lexNoErrors(t, "foo.bar")
	if len(toks) != 3 || toks[0].Kind != TokIdent || toks[1].Kind != TokDot || toks[2].Kind != TokIdent {
		t.Fatalf("lex(foo.bar) = %+v", toks)
	}
}

func TestLexStripsLineAndBlockComments(t *testing.T) {
	toks := lexNoErrors(t, "1 // trailing\n/* block\nspanning */2")
	if len(toks) != 2 || toks[0].Int != 1 || toks[1].Int != 2 {
		t.Fatalf("lex(...) = %+v", toks)
	}
}

func TestLexUnterminatedStringIsError(t *testing.T) {
	c := New(Options{})
	lex(c, `"abc`, "<test>")
	if !c.AnyErrors() {
		t.Error("expected a lex error for an unterminated string")
	}
}
