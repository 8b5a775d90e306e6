package interp

import "github.com/pawscript-lang/pawscript/nativebridge"

// parser turns a token stream into statements, building expression trees
// with the precedence-climbing variant of shunting-yard spec.md 4.4
// describes: an operand scan followed by operator-precedence tree
// construction, done here in one pass since the token stream (unlike a
// dry-run skip) never needs to be re-walked.
type parser struct {
	ctx    *Context
	tokens []Token
	pos    int

	// types is the parser's own flat type-name table, kept separate from
	// the runtime scope-based typedef table in Context: the whole token
	// stream is parsed before any statement executes, so a later type
	// annotation needs an earlier typedef visible immediately, regardless
	// of what block it will eventually execute in.
	types map[string]*Type
}

func newParser(ctx *Context, tokens []Token) *parser {
	return &parser{ctx: ctx, tokens: tokens, types: map[string]*Type{}}
}

func (p *parser) here() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: TokEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return Token{Kind: TokEOF}
	}
	return p.tokens[p.pos+n]
}

func (p *parser) advance() Token {
	t := p.here()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) at(k TokenKind) bool { return p.here().Kind == k }

func (p *parser) expect(k TokenKind, what string) Token {
	if !p.at(k) {
		p.ctx.pushError(ErrKindParse, p.here().Pos, "expected %s", what)
		return p.here()
	}
	return p.advance()
}

func (p *parser) parseProgram() []stmt {
	var out []stmt
	for !p.at(TokEOF) {
		out = append(out, p.parseStmt())
	}
	return out
}

// parseBlockStmts parses a statement body, accepting both brace form
// `{ stmt ... }` and the single-statement arrow form `-> stmt`, per
// spec.md 4.5.
func (p *parser) parseBlockStmts() []stmt {
	if p.at(TokArrow) {
		p.advance()
		return []stmt{p.parseStmt()}
	}
	p.expect(TokLBrace, "{")
	var out []stmt
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		out = append(out, p.parseStmt())
	}
	p.expect(TokRBrace, "}")
	return out
}

func (p *parser) parseStmt() stmt {
	switch p.here().Kind {
	case TokLBrace:
		return &blockStmt{body: p.parseBlockStmts()}
	case TokKwIf:
		return p.parseIfStmt()
	case TokKwWhile:
		return p.parseWhileStmt()
	case TokKwFor:
		return p.parseForStmt()
	case TokKwReturn:
		p.advance()
		var e exprNode
		if !p.at(TokSemicolon) {
			e = p.parseExpr()
		}
		p.expect(TokSemicolon, ";")
		return &returnStmt{value: e}
	case TokKwBreak:
		p.advance()
		p.expect(TokSemicolon, ";")
		return &breakStmt{}
	case TokKwContinue:
		p.advance()
		p.expect(TokSemicolon, ";")
		return &continueStmt{}
	case TokKwInclude:
		fromFile := p.here().Pos.File
		p.advance()
		path := p.expect(TokString, "include path").Str
		p.expect(TokSemicolon, ";")
		return &includeStmt{path: path, fromFile: fromFile}
	case TokKwExtern:
		return p.parseDeclStmt(true, false)
	case TokKwTypedef:
		return p.parseDeclStmt(false, true)
	}
	if p.looksLikeDecl() {
		return p.parseDeclStmt(false, false)
	}
	e := p.parseExpr()
	p.expect(TokSemicolon, ";")
	return &exprStmt{expr: e}
}

func (p *parser) parseIfStmt() stmt {
	p.advance()
	var clauses []ifClause
	cond := p.parseExpr()
	// `if cond -> [ then ; else ; ]` in statement position is the
	// conditional expression, evaluated for its effects.
	if p.at(TokArrow) && p.peekAt(1).Kind == TokLBracket {
		p.advance()
		p.advance()
		var then, els exprNode
		if !p.at(TokSemicolon) {
			then = p.parseExpr()
		}
		p.expect(TokSemicolon, ";")
		if !p.at(TokSemicolon) && !p.at(TokRBracket) {
			els = p.parseExpr()
		}
		p.expect(TokSemicolon, ";")
		p.expect(TokRBracket, "]")
		return &exprStmt{expr: &condExpr{cond: cond, then: then, els: els}}
	}
	body := p.parseBlockStmts()
	clauses = append(clauses, ifClause{cond: cond, body: body})
	for p.at(TokKwElif) {
		p.advance()
		c := p.parseExpr()
		b := p.parseBlockStmts()
		clauses = append(clauses, ifClause{cond: c, body: b})
	}
	var elseBody []stmt
	if p.at(TokKwElse) {
		p.advance()
		elseBody = p.parseBlockStmts()
	}
	return &ifStmt{clauses: clauses, elseBody: elseBody}
}

func (p *parser) parseWhileStmt() stmt {
	p.advance()
	cond := p.parseExpr()
	body := p.parseBlockStmts()
	return &whileStmt{cond: cond, body: body}
}

// parseForStmt parses `for <intT> name in (a,b) body`. Either side of the
// range may open with `(` (exclusive) or `[` (inclusive) and close with
// `)` (exclusive) or `]` (inclusive), independently, per spec.md 4.5.
func (p *parser) parseForStmt() stmt {
	p.advance()
	elemType := p.parseTypeName()
	name := p.expect(TokIdent, "loop variable").Str
	p.expect(TokKwIn, "in")

	loInclusive := p.at(TokLBracket)
	if loInclusive {
		p.advance()
	} else {
		p.expect(TokLParen, "(")
	}
	lo := p.parseExpr()
	p.expect(TokComma, ",")
	hi := p.parseExpr()
	hiInclusive := p.at(TokRBracket)
	if hiInclusive {
		p.advance()
	} else {
		p.expect(TokRParen, ")")
	}

	body := p.parseBlockStmts()
	return &forStmt{elemType: elemType, name: name, lo: lo, hi: hi, loInclusive: loInclusive, hiInclusive: hiInclusive, body: body}
}

// parseDeclStmt parses `[extern|typedef] T name [= expr | { body }]
// (, name ...)? ;`, per spec.md 4.5. A declaration may introduce several
// comma-separated names sharing the same base type and optional
// initializer expression.
func (p *parser) parseDeclStmt(isExtern, isTypedef bool) stmt {
	if isExtern || isTypedef {
		p.advance() // 'extern' or 'typedef'
	}
	ty := p.parseTypeName()

	if isTypedef {
		// `typedef RetType(ArgType, ...) Name;` typedefs a function type,
		// matching the shape `new<Name>{ body }` and extern declarations
		// already use.
		if p.at(TokLParen) {
			args, variadic := p.parseParamList()
			ty = &Type{Kind: KindFunction, Return: ty, Args: args, Variadic: variadic}
		}
		name := p.expect(TokIdent, "type name").Str
		p.types[name] = ty
		p.expect(TokSemicolon, ";")
		return &typedefStmt{name: name, typ: ty}
	}

	// A bare `struct Name;` forward declaration, or a `struct Name { ... };`
	// definition with no variable after it, has no variable to name: the
	// parser has already entered the struct (incomplete placeholder or
	// completed body) into its type table, so the statement does nothing
	// at run time.
	if !isExtern && ty.Kind == KindStruct && p.at(TokSemicolon) {
		p.advance()
		return &blockStmt{}
	}

	var decls []varDecl
	for {
		name := p.expect(TokIdent, "name").Str
		var init exprNode
		var fnType *Type
		var body []stmt
		var paramNames []string
		switch {
		case p.at(TokLParen) && !isExtern:
			args, names, variadic := p.parseNamedParamList()
			fnType = &Type{Kind: KindFunction, Return: ty, Args: args, Variadic: variadic}
			if p.at(TokLBrace) || p.at(TokArrow) {
				body = p.parseBlockStmts()
				paramNames = names
			}
		case p.at(TokLParen):
			args, variadic := p.parseParamList()
			fnType = &Type{Kind: KindFunction, Return: ty, Args: args, Variadic: variadic}
		case p.at(TokAssign):
			p.advance()
			init = p.parseExpr()
		}
		decls = append(decls, varDecl{name: name, init: init, fnType: fnType, body: body, params: paramNames})
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	if decls[len(decls)-1].body == nil {
		p.expect(TokSemicolon, ";")
	}
	return &declStmt{typ: ty, decls: decls, isExtern: isExtern}
}

// parseParamList parses a C-like `(T, T, ...)` parameter type list, used
// by extern function declarations: `extern void puts(const s8*);`.
func (p *parser) parseParamList() (args []*Type, variadic bool) {
	p.expect(TokLParen, "(")
	for !p.at(TokRParen) && !p.at(TokEOF) {
		if p.at(TokEllipsis) {
			p.advance()
			variadic = true
			break
		}
		args = append(args, p.parseTypeName())
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(TokRParen, ")")
	return args, variadic
}

// parseNamedParamList parses a C-style `(T a, T b, ...)` parameter list
// where each entry carries both a type and a binding name, used by a
// function declaration's own `name(T a, T b) { body }` form (spec.md
// 4.5, scenario 2 in spec.md 8): unlike an extern declaration or a
// typedef'd function type, a declaration with a body has somewhere for
// the parameter identifiers to live syntactically, so the body can
// refer to them directly instead of falling back to the positional
// arg0/arg1 naming anonymous `new <Fn>{ body }` literals use.
func (p *parser) parseNamedParamList() (args []*Type, names []string, variadic bool) {
	p.expect(TokLParen, "(")
	for !p.at(TokRParen) && !p.at(TokEOF) {
		if p.at(TokEllipsis) {
			p.advance()
			variadic = true
			break
		}
		args = append(args, p.parseTypeName())
		names = append(names, p.expect(TokIdent, "parameter name").Str)
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	p.expect(TokRParen, ")")
	return args, names, variadic
}

// precedence table, low to high, matching spec.md 4.4. Assignment is
// handled separately (right-associative, lowest) in parseAssign.
var binPrec = map[TokenKind]int{
	TokOrOr:  1,
	TokAndAnd: 2,
	TokPipe:  3,
	TokCaret: 4,
	TokAmp:   5,
	TokEq:    6,
	TokNeq:   6,
	TokLt:    7,
	TokGt:    7,
	TokLe:    7,
	TokGe:    7,
	TokShl:   8,
	TokShr:   8,
	TokPlus:  9,
	TokMinus: 9,
	TokStar:  10,
	TokSlash: 10,
	TokPercent: 10,
	TokPow:   11,
}

var assignOps = map[TokenKind]TokenKind{
	TokPlusAssign:    TokPlus,
	TokMinusAssign:   TokMinus,
	TokStarAssign:    TokStar,
	TokSlashAssign:   TokSlash,
	TokPercentAssign: TokPercent,
	TokPowAssign:     TokPow,
	TokShlAssign:     TokShl,
	TokShrAssign:     TokShr,
	TokAndAssign:     TokAmp,
	TokOrAssign:      TokPipe,
	TokXorAssign:     TokCaret,
}

// parseExpr is the entry point: assignment sits below every binary
// operator and is right-associative, per spec.md 4.4's precedence table.
func (p *parser) parseExpr() exprNode {
	lhs := p.parseBinary(1)
	if p.at(TokAssign) {
		p.advance()
		rhs := p.parseExpr()
		return &assignExpr{lhs: lhs, rhs: rhs}
	}
	if base, ok := assignOps[p.here().Kind]; ok {
		p.advance()
		rhs := p.parseExpr()
		return &assignExpr{lhs: lhs, rhs: &binaryExpr{op: base, left: lhs, right: rhs}}
	}
	return lhs
}

func (p *parser) parseBinary(minPrec int) exprNode {
	left := p.parseUnary()
	for {
		prec, ok := binPrec[p.here().Kind]
		if !ok || prec < minPrec {
			return left
		}
		op := p.advance().Kind
		right := p.parseBinary(prec + 1)
		left = &binaryExpr{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() exprNode {
	switch p.here().Kind {
	case TokPlus, TokMinus, TokBang, TokTilde, TokAmp, TokStar, TokIncrement, TokDecrement:
		op := p.advance().Kind
		operand := p.parseUnary()
		return &unaryExpr{op: op, operand: operand, prefix: true}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() exprNode {
	e := p.parsePrimary()
	for {
		switch p.here().Kind {
		case TokDot:
			p.advance()
			name := p.expect(TokIdent, "field name").Str
			e = &memberExpr{recv: e, field: name}
		case TokLBracket:
			p.advance()
			idx := p.parseExpr()
			p.expect(TokRBracket, "]")
			e = &indexExpr{base: e, index: idx}
		case TokLParen:
			p.advance()
			var args []exprNode
			for !p.at(TokRParen) {
				args = append(args, p.parseExpr())
				if p.at(TokComma) {
					p.advance()
				}
			}
			p.expect(TokRParen, ")")
			e = &callExpr{callee: e, args: args}
		case TokIncrement, TokDecrement:
			op := p.advance().Kind
			e = &unaryExpr{op: op, operand: e, prefix: false}
		case TokQuestion:
			p.advance()
			e = &truthyExpr{operand: e}
		case TokDblQuestion:
			p.advance()
			rhs := p.parseUnary()
			e = &coalesceExpr{lhs: e, rhs: rhs}
		default:
			return e
		}
	}
}

func (p *parser) parsePrimary() exprNode {
	t := p.here()
	switch t.Kind {
	case TokInt:
		p.advance()
		return &literalExpr{value: rvalueInt(intType(4, false), t.Int)}
	case TokFloat:
		p.advance()
		return &literalExpr{value: rvalueFloat(floatType(8), t.Float)}
	case TokString:
		p.advance()
		return &stringLitExpr{str: t.Str}
	case TokKwThis:
		p.advance()
		return &identExpr{name: "this"}
	case TokKwNew:
		return p.parseNewExpr()
	case TokKwCast:
		return p.parseCastExpr(false)
	case TokKwBitcast:
		return p.parseCastExpr(true)
	case TokKwSizeof:
		p.advance()
		p.expect(TokLParen, "(")
		te := p.parseTypeOrExpr()
		p.expect(TokRParen, ")")
		return &sizeofExpr{arg: te}
	case TokKwOffsetof:
		p.advance()
		p.expect(TokLt, "<")
		ty := p.parseTypeName()
		p.expect(TokGt, ">")
		p.expect(TokDot, ".")
		field := p.expect(TokIdent, "field name").Str
		return &offsetofExpr{structType: ty, field: field}
	case TokKwScopeof:
		p.advance()
		p.expect(TokLParen, "(")
		name := "this"
		if p.at(TokKwThis) {
			p.advance()
		} else {
			name = p.expect(TokIdent, "name").Str
		}
		p.expect(TokRParen, ")")
		return &scopeofExpr{name: name}
	case TokKwInfoof:
		p.advance()
		p.expect(TokLParen, "(")
		arg := p.parseExpr()
		p.expect(TokRParen, ")")
		return &infoofExpr{arg: arg}
	case TokKwDelete:
		p.advance()
		p.expect(TokLParen, "(")
		arg := p.parseExpr()
		p.expect(TokRParen, ")")
		return &deleteExpr{arg: arg}
	case TokKwAdopt:
		p.advance()
		p.expect(TokLParen, "(")
		arg := p.parseExpr()
		p.expect(TokRParen, ")")
		return &adoptExpr{arg: arg}
	case TokKwPromote:
		return p.parsePromoteExpr()
	case TokIdent:
		p.advance()
		return &identExpr{name: t.Str}
	case TokLParen:
		p.advance()
		e := p.parseExpr()
		p.expect(TokRParen, ")")
		return e
	case TokKwIf:
		return p.parseIfExpr()
	}
	p.ctx.pushError(ErrKindParse, t.Pos, "unexpected token in expression")
	p.advance()
	return &literalExpr{value: rvalueInt(voidType(), 0)}
}

func (p *parser) parseNewExpr() exprNode {
	p.advance() // 'new'
	scoped := false
	if p.at(TokKwScoped) {
		p.advance()
		scoped = true
	}
	if p.at(TokLParen) {
		p.advance()
		n := p.parseExpr()
		p.expect(TokRParen, ")")
		return &newExpr{rawBytes: n, scoped: scoped}
	}
	p.expect(TokLt, "<")
	ty := p.parseTypeName()
	p.expect(TokGt, ">")
	if p.at(TokLBrace) || p.at(TokArrow) {
		body := p.parseBlockStmts()
		return &newExpr{fnType: ty, body: body, scoped: scoped}
	}
	if p.at(TokLParen) {
		p.advance()
		count := p.parseExpr()
		p.expect(TokRParen, ")")
		return &newExpr{elemType: ty, count: count, scoped: scoped}
	}
	return &newExpr{elemType: ty, scoped: scoped}
}

func (p *parser) parseCastExpr(bit bool) exprNode {
	p.advance() // 'cast' / 'bitcast'
	p.expect(TokLt, "<")
	ty := p.parseTypeName()
	p.expect(TokGt, ">")
	p.expect(TokLParen, "(")
	arg := p.parseExpr()
	p.expect(TokRParen, ")")
	return &castExpr{dstType: ty, arg: arg, bit: bit}
}

// parseTypeOrExpr supports the sizeof(T | e) ambiguity: a leading type
// keyword, or an identifier known to name a builtin/typedef followed
// immediately by a pointer star, parses as a bare type; anything else
// parses as an ordinary expression and is resolved through its runtime
// value's type, per spec.md 4.4.
func (p *parser) parseTypeOrExpr() exprNode {
	if p.at(TokKwVoid) || p.at(TokKwStruct) || p.at(TokKwConst) {
		t := p.parseTypeName()
		return &literalExpr{value: Value{Type: t}}
	}
	if p.at(TokIdent) {
		name := p.here().Str
		_, isBuiltin := builtinTypeByName(name)
		_, isTypedef := p.types[name]
		if (isBuiltin || isTypedef) && p.peekAt(1).Kind == TokStar {
			t := p.parseTypeName()
			return &literalExpr{value: Value{Type: t}}
		}
	}
	return p.parseExpr()
}

func (p *parser) parsePromoteExpr() exprNode {
	p.advance() // 'promote'
	if p.at(TokKwGlobal) {
		p.advance()
		p.expect(TokLParen, "(")
		arg := p.parseExpr()
		p.expect(TokRParen, ")")
		return &promoteExpr{arg: arg, toGlobal: true}
	}
	if p.at(TokInt) {
		n := int(p.advance().Int)
		p.expect(TokLParen, "(")
		arg := p.parseExpr()
		p.expect(TokRParen, ")")
		return &promoteExpr{arg: arg, levels: n}
	}
	p.expect(TokLParen, "(")
	arg := p.parseExpr()
	p.expect(TokRParen, ")")
	e := &promoteExpr{arg: arg, levels: 1}
	if p.at(TokArrow) {
		p.advance()
		p.expect(TokLBracket, "[")
		e.depth = int(p.expect(TokInt, "scope depth").Int)
		e.hasDepth = true
		p.expect(TokRBracket, "]")
	}
	return e
}

// looksLikeDecl reports whether the statement at the current position
// opens with a type, meaning it is a declaration rather than an
// expression statement.
func (p *parser) looksLikeDecl() bool {
	switch p.here().Kind {
	case TokKwVoid, TokKwStruct, TokKwConst:
		return true
	case TokIdent:
		if _, ok := builtinTypeByName(p.here().Str); ok {
			return true
		}
		if _, ok := p.types[p.here().Str]; ok {
			return true
		}
	}
	return false
}

// parseTypeName parses one type annotation: an optional leading const,
// a base type (builtin scalar, struct body/reference, or typedef name),
// and any number of trailing pointer stars, per spec.md 3/4.2.
func (p *parser) parseTypeName() *Type {
	isConst := false
	if p.at(TokKwConst) {
		p.advance()
		isConst = true
	}
	var base *Type
	switch p.here().Kind {
	case TokKwVoid:
		p.advance()
		base = voidType()
	case TokKwStruct:
		p.advance()
		base = p.parseStructType()
	case TokIdent:
		name := p.advance().Str
		if t, ok := builtinTypeByName(name); ok {
			base = t
		} else if t, ok := p.types[name]; ok {
			base = t
		} else {
			p.ctx.pushError(ErrKindType, p.here().Pos, "undefined type %q", name)
			base = voidType()
		}
	default:
		p.ctx.pushError(ErrKindParse, p.here().Pos, "expected a type")
		base = voidType()
	}
	if isConst {
		base = CopyType(base)
		base.IsConst = true
	}
	for p.at(TokStar) {
		p.advance()
		base = pointerType(base)
	}
	return base
}

// parseStructType parses `struct [Name] { field ; field ; ... }` or a bare
// `struct Name` forward reference. A named struct is entered into the
// parser's type table before its body is parsed so self-referential
// pointer fields (`Node* next` inside `struct Node`) resolve.
func (p *parser) parseStructType() *Type {
	name := ""
	if p.at(TokIdent) {
		name = p.advance().Str
	}
	if !p.at(TokLBrace) {
		if t, ok := p.types[name]; ok {
			return t
		}
		t := &Type{Kind: KindStruct, Name: name, IsIncomplete: true}
		if name != "" {
			p.types[name] = t
		}
		return t
	}
	// Reuse an existing incomplete placeholder (from an earlier bare
	// `struct Name;` forward declaration) rather than allocating a new
	// Type: anything that captured a pointer to the placeholder before
	// this body was parsed (e.g. a typedef'd function signature naming
	// `Name*` as an argument type) needs that same object to gain fields
	// once the body completes, not a second, disconnected one.
	t, ok := p.types[name]
	if !ok || t == nil {
		t = &Type{Kind: KindStruct, Name: name, IsIncomplete: true}
	}
	if name != "" {
		p.types[name] = t
	}
	p.expect(TokLBrace, "{")
	running := 0
	for !p.at(TokRBrace) && !p.at(TokEOF) {
		fieldType := p.parseTypeName()
		fieldName := p.expect(TokIdent, "field name").Str
		offset := OffsetFor(running, fieldType)
		if p.at(TokAt) {
			p.advance()
			offset = int(p.parseFieldOffsetExpr(t.Fields, fieldName, running).eval(p.ctx).AsUint())
		}
		t.Fields = append(t.Fields, Field{Name: fieldName, Type: fieldType, Offset: offset})
		running = offset + Sizeof(fieldType)
		p.expect(TokSemicolon, ";")
	}
	p.expect(TokRBrace, "}")
	t.IsIncomplete = false
	resolveIncomplete(t, t)
	return t
}

// parseFieldOffsetExpr parses the `@expr` custom-offset suffix on a
// struct field. The expression is evaluated in a throwaway scope where
// every field declared so far, plus the field currently being declared,
// is bound to a constant equal to its default offset, so an expression
// like `@(prev + 4)` can reference earlier layout decisions.
func (p *parser) parseFieldOffsetExpr(prior []Field, currentName string, currentDefault int) exprNode {
	saved := p.ctx.current
	p.ctx.current = pushOffsetScope(saved, prior, currentName, currentDefault)
	e := p.parseExpr()
	result := e.eval(p.ctx)
	p.ctx.current = saved
	return &literalExpr{value: result}
}

func pushOffsetScope(parent *Scope, prior []Field, currentName string, currentDefault int) *Scope {
	s := newScope(parent, scopeRegular)
	bind := func(name string, offset int) {
		a, err := nativebridge.NewPage(false)
		if err != nil {
			return
		}
		addr := addrOfSlice(a.Bytes())
		writeUint(addr, 8, uint64(offset))
		s.vars = append(s.vars, &Variable{Name: name, Type: intType(8, true), Address: addr, NoAlloc: true})
		s.allocations = append(s.allocations, &Allocation{Page: a, Ptr: addr, Size: 8, Strict: true})
	}
	for _, f := range prior {
		bind(f.Name, f.Offset)
	}
	bind(currentName, currentDefault)
	return s
}

func (p *parser) parseIfExpr() exprNode {
	p.advance()
	cond := p.parseExpr()
	p.expect(TokArrow, "->")
	p.expect(TokLBracket, "[")
	var then, els exprNode
	if !p.at(TokSemicolon) {
		then = p.parseExpr()
	}
	p.expect(TokSemicolon, ";")
	if !p.at(TokSemicolon) && !p.at(TokRBracket) {
		els = p.parseExpr()
	}
	p.expect(TokSemicolon, ";")
	p.expect(TokRBracket, "]")
	return &condExpr{cond: cond, then: then, els: els}
}
