package interp

// Position is source provenance attached to every token, the way yaegi
// attaches a token.Pos resolvable through its fset; PawScript keeps the
// triple directly on the token since there is no separate file set to
// resolve against.
type Position struct {
	Row  int
	Col  int
	File string
}

// TokenKind enumerates every lexical category the lexer emits. Keywords
// are looked up in the keywords map and symbols in symbolTable; both
// resolve text to a TokenKind that the parser consumes directly.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokInt
	TokFloat
	TokString

	// keywords
	TokKwIf
	TokKwElif
	TokKwElse
	TokKwWhile
	TokKwFor
	TokKwIn
	TokKwReturn
	TokKwBreak
	TokKwContinue
	TokKwInclude
	TokKwExtern
	TokKwTypedef
	TokKwStruct
	TokKwNew
	TokKwDelete
	TokKwAdopt
	TokKwPromote
	TokKwScoped
	TokKwGlobal
	TokKwSizeof
	TokKwOffsetof
	TokKwScopeof
	TokKwInfoof
	TokKwCast
	TokKwBitcast
	TokKwVarargs
	TokKwThis
	TokKwVoid
	TokKwConst

	// symbols
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokSemicolon
	TokComma
	TokDot
	TokArrow   // ->
	TokEllipsis // ...
	TokAt      // @
	TokQuestion // ?
	TokDblQuestion // ??
	TokColon

	TokAssign
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokPow // **
	TokPlusAssign
	TokMinusAssign
	TokStarAssign
	TokSlashAssign
	TokPercentAssign
	TokPowAssign
	TokShlAssign
	TokShrAssign
	TokAndAssign
	TokOrAssign
	TokXorAssign

	TokIncrement
	TokDecrement
	TokAmp
	TokPipe
	TokCaret
	TokTilde
	TokBang
	TokShl
	TokShr
	TokAndAnd
	TokOrOr
	TokEq
	TokNeq
	TokLt
	TokGt
	TokLe
	TokGe
)

// Token is a single lexical unit with its decoded literal value attached.
type Token struct {
	Kind   TokenKind
	Pos    Position
	Str    string  // identifier text, decoded string literal, or raw symbol text
	Int    uint64  // decoded integer literal
	Float  float64 // decoded float literal
	Signed bool    // integer literal carried a sign-affecting suffix/context
}

// keywords maps identifier text to its keyword token kind. Anything not
// found here lexes as TokIdent.
var keywords = map[string]TokenKind{
	"if":        TokKwIf,
	"elif":      TokKwElif,
	"else":      TokKwElse,
	"while":     TokKwWhile,
	"for":       TokKwFor,
	"in":        TokKwIn,
	"return":    TokKwReturn,
	"break":     TokKwBreak,
	"continue":  TokKwContinue,
	"include":   TokKwInclude,
	"extern":    TokKwExtern,
	"typedef":   TokKwTypedef,
	"struct":    TokKwStruct,
	"new":       TokKwNew,
	"delete":    TokKwDelete,
	"adopt":     TokKwAdopt,
	"promote":   TokKwPromote,
	"scoped":    TokKwScoped,
	"global":    TokKwGlobal,
	"sizeof":    TokKwSizeof,
	"offsetof":  TokKwOffsetof,
	"scopeof":   TokKwScopeof,
	"infoof":    TokKwInfoof,
	"cast":      TokKwCast,
	"bitcast":   TokKwBitcast,
	"varargs":   TokKwVarargs,
	"this":      TokKwThis,
	"void":      TokKwVoid,
	"const":     TokKwConst,
}

// symbolTable lists every multi-character symbol PawScript recognizes,
// longest-prefix first within each starting character so the lexer's
// greedy extension (4.1) finds the longest exact match.
var symbolTable = []struct {
	text string
	kind TokenKind
}{
	{"...", TokEllipsis},
	{"**=", TokPowAssign},
	{"<<=", TokShlAssign},
	{">>=", TokShrAssign},
	{"->", TokArrow},
	{"??", TokDblQuestion},
	{"++", TokIncrement},
	{"--", TokDecrement},
	{"**", TokPow},
	{"&&", TokAndAnd},
	{"||", TokOrOr},
	{"==", TokEq},
	{"!=", TokNeq},
	{"<=", TokLe},
	{">=", TokGe},
	{"<<", TokShl},
	{">>", TokShr},
	{"+=", TokPlusAssign},
	{"-=", TokMinusAssign},
	{"*=", TokStarAssign},
	{"/=", TokSlashAssign},
	{"%=", TokPercentAssign},
	{"&=", TokAndAssign},
	{"|=", TokOrAssign},
	{"^=", TokXorAssign},
	{"//", TokKindLineComment},
	{"/*", TokKindBlockCommentStart},
	{"*/", TokKindBlockCommentEnd},
	{"(", TokLParen},
	{")", TokRParen},
	{"{", TokLBrace},
	{"}", TokRBrace},
	{"[", TokLBracket},
	{"]", TokRBracket},
	{";", TokSemicolon},
	{",", TokComma},
	{".", TokDot},
	{"@", TokAt},
	{"?", TokQuestion},
	{":", TokColon},
	{"=", TokAssign},
	{"+", TokPlus},
	{"-", TokMinus},
	{"*", TokStar},
	{"/", TokSlash},
	{"%", TokPercent},
	{"&", TokAmp},
	{"|", TokPipe},
	{"^", TokCaret},
	{"~", TokTilde},
	{"!", TokBang},
	{"<", TokLt},
	{">", TokGt},
}

// TokKindLineComment, TokKindBlockCommentStart/End only ever appear inside
// the raw symbol scan; pawscript_remove_comments strips them before the
// parser sees the stream, so they are not part of the public TokenKind
// surface used by the evaluator.
const (
	TokKindLineComment TokenKind = -(iota + 1)
	TokKindBlockCommentStart
	TokKindBlockCommentEnd
)
