// Package parser implements the Fig parser: Pratt precedence climbing for
// expressions and recursive descent for statements.
//
// Parsing aborts on the first error. Every parse method returns the first
// syntax error it encounters; the caller attaches source context before
// presenting it.
package parser

import (
	"strconv"
	"strings"

	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
)

// bindingPower is a left/right binding power pair for an infix operator.
// Right-associative operators have right < left.
type bindingPower struct {
	left  int
	right int
}

// opBindingPowers maps each infix operator to its binding powers.
// The ladder follows C-family conventions: assignments bind loosest and
// associate right, power binds tightest and associates right.
var opBindingPowers = map[ast.Operator]bindingPower{
	ast.OpAssign:    {2, 1},
	ast.OpAddAssign: {2, 1},
	ast.OpSubAssign: {2, 1},
	ast.OpDivAssign: {2, 1},
	ast.OpMulAssign: {2, 1},
	ast.OpModAssign: {2, 1},
	ast.OpXorAssign: {2, 1},

	ast.OpOr:  {4, 5},
	ast.OpAnd: {6, 7},

	ast.OpEqual:    {8, 9},
	ast.OpNotEqual: {8, 9},
	ast.OpIs:       {8, 9},

	ast.OpLess:         {10, 11},
	ast.OpLessEqual:    {10, 11},
	ast.OpGreater:      {10, 11},
	ast.OpGreaterEqual: {10, 11},

	ast.OpBitOr:  {12, 13},
	ast.OpBitXor: {14, 15},
	ast.OpBitAnd: {16, 17},

	ast.OpShiftLeft:  {18, 19},
	ast.OpShiftRight: {18, 19},

	ast.OpAdd: {20, 21},
	ast.OpSub: {20, 21},

	ast.OpMul: {22, 23},
	ast.OpDiv: {22, 23},
	ast.OpMod: {22, 23},

	ast.OpPow: {26, 25},
}

// unaryBindingPower is the binding power of prefix operators. Unary binds
// tightest, so `-2 ** 2` reads `(-2) ** 2`.
const unaryBindingPower = 28

// ternaryBindingPower sits between `or` and the assignments, so
// `a + b ? c : d` reads `(a + b) ? c : d` while `x = b ? c : d` assigns the
// whole conditional.
const ternaryBindingPower = 3

// Parser parses a token stream into an AST. The first syntax error aborts
// parsing; Err returns it after ParseProgram.
type Parser struct {
	l   *lexer.Lexer
	cur lexer.Token
	pk  lexer.Token
	err *errors.Error

	// noInitExpr suppresses TypeName{...} detection while parsing an
	// unparenthesized condition, so `while done { }` reads `done` as the
	// condition rather than the start of a struct init.
	noInitExpr bool

	// needSemicolon is cleared while parsing a for-loop increment, whose
	// trailing statement has no `;` before the closing brace.
	needSemicolon bool
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, needSemicolon: true}
	p.next()
	p.next()
	return p
}

// Err returns the first error encountered, or nil.
func (p *Parser) Err() *errors.Error {
	return p.err
}

// next advances the token window by one token.
func (p *Parser) next() {
	p.cur = p.pk
	p.pk = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.pk.Type == t }

// syntaxErr records and returns the first syntax error.
func (p *Parser) syntaxErr(pos lexer.Position, format string, args ...any) *errors.Error {
	e := errors.Newf(errors.SyntaxError, pos, format, args...)
	if p.err == nil {
		p.err = e
	}
	return e
}

// checkIllegal converts a lexer error into a syntax error when the current
// token is the ILLEGAL sentinel.
func (p *Parser) checkIllegal() *errors.Error {
	if !p.curIs(lexer.ILLEGAL) {
		return nil
	}
	if lerr := p.l.Err(); lerr != nil {
		return p.syntaxErr(lerr.Pos, "%s", lerr.Message)
	}
	return p.syntaxErr(p.cur.Pos, "illegal token")
}

// expect verifies the current token type without consuming it.
func (p *Parser) expect(t lexer.TokenType) *errors.Error {
	if e := p.checkIllegal(); e != nil {
		return e
	}
	if !p.curIs(t) {
		return p.syntaxErr(p.cur.Pos, "Expected `%s`, but got `%s`", t, p.cur.Type)
	}
	return nil
}

// expectConsume verifies and consumes the current token.
func (p *Parser) expectConsume(t lexer.TokenType) *errors.Error {
	if e := p.expect(t); e != nil {
		return e
	}
	p.next()
	return nil
}

// expectNamed is expect with a human-readable description in the message.
func (p *Parser) expectNamed(t lexer.TokenType, what string) *errors.Error {
	if e := p.checkIllegal(); e != nil {
		return e
	}
	if !p.curIs(t) {
		return p.syntaxErr(p.cur.Pos, "Expected %s, but got `%s`", what, p.cur.Type)
	}
	return nil
}

// expectSemicolon consumes the statement terminator. While the for-increment
// guard is active, a semicolon is consumed if present but not required.
func (p *Parser) expectSemicolon() *errors.Error {
	if !p.needSemicolon {
		if p.curIs(lexer.SEMICOLON) {
			p.next()
		}
		return nil
	}
	return p.expectConsume(lexer.SEMICOLON)
}

// ParseProgram parses the whole token stream.
func (p *Parser) ParseProgram() (*ast.Program, *errors.Error) {
	program := &ast.Program{}
	for !p.curIs(lexer.EOF) {
		if e := p.checkIllegal(); e != nil {
			return nil, e
		}
		stmt, e := p.parseStatement()
		if e != nil {
			return nil, e
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

// parseExpression parses an expression with the given minimum binding power.
func (p *Parser) parseExpression(minBP int) (ast.Expression, *errors.Error) {
	if e := p.checkIllegal(); e != nil {
		return nil, e
	}

	lhs, e := p.parsePrefix()
	if e != nil {
		return nil, e
	}

	for {
		if e := p.checkIllegal(); e != nil {
			return nil, e
		}
		tok := p.cur
		if tok.Type == lexer.SEMICOLON || tok.Type == lexer.EOF {
			break
		}
		if tok.Type == lexer.QUESTION && minBP >= ternaryBindingPower {
			break
		}

		// postfix forms bind tighter than every infix operator
		switch tok.Type {
		case lexer.LPAREN:
			lhs, e = p.parseCall(lhs)
			if e != nil {
				return nil, e
			}
			continue
		case lexer.DOT:
			p.next() // consume '.'
			if e := p.expectNamed(lexer.IDENT, "identifier after '.'"); e != nil {
				return nil, e
			}
			lhs = &ast.MemberExpression{Token: tok, Base: lhs, Member: p.cur.Literal}
			p.next()
			continue
		case lexer.LBRACK:
			p.next() // consume '['
			idx, e := p.parseExpression(0)
			if e != nil {
				return nil, e
			}
			if e := p.expectConsume(lexer.RBRACK); e != nil {
				return nil, e
			}
			lhs = &ast.IndexExpression{Token: tok, Base: lhs, Index: idx}
			continue
		case lexer.QUESTION:
			p.next() // consume '?'
			ifTrue, e := p.parseExpression(0)
			if e != nil {
				return nil, e
			}
			if e := p.expectConsume(lexer.COLON); e != nil {
				return nil, e
			}
			ifFalse, e := p.parseExpression(0)
			if e != nil {
				return nil, e
			}
			lhs = &ast.TernaryExpression{Token: tok, Condition: lhs, IfTrue: ifTrue, IfFalse: ifFalse}
			continue
		}

		op := ast.TokenOperator(tok.Type)
		if op == ast.OpNone {
			break
		}
		bp, ok := opBindingPowers[op]
		if !ok || minBP >= bp.left {
			break
		}

		p.next() // consume the operator
		rhs, e := p.parseExpression(bp.right)
		if e != nil {
			return nil, e
		}
		lhs = &ast.BinaryExpression{Token: tok, Left: lhs, Operator: op, Right: rhs}
	}

	return lhs, nil
}

// parsePrefix parses the leading operand of an expression.
func (p *Parser) parsePrefix() (ast.Expression, *errors.Error) {
	tok := p.cur

	switch {
	case tok.Type == lexer.EOF:
		return nil, p.syntaxErr(tok.Pos, "Unexpected end of expression")

	case tok.Type == lexer.LBRACK:
		return p.parseListLiteral()

	case tok.Type == lexer.LPAREN:
		return p.parseTupleOrParenExpr()

	case tok.Type == lexer.LBRACE:
		return p.parseMapLiteral()

	case tok.Type == lexer.FUNC:
		p.next() // consume 'func'
		if p.curIs(lexer.IDENT) {
			return nil, p.syntaxErr(p.cur.Pos, "Function literal should not have a name")
		}
		if e := p.expect(lexer.LPAREN); e != nil {
			return nil, e
		}
		return p.parseFunctionLiteral(tok)

	case tok.IsLiteral():
		return p.parseLiteral()

	case tok.Type == lexer.IDENT:
		p.next()
		if p.curIs(lexer.LBRACE) && !p.noInitExpr {
			return p.parseInitExpr(&ast.Identifier{Token: tok, Value: tok.Literal})
		}
		return &ast.Identifier{Token: tok, Value: tok.Literal}, nil

	default:
		if op := ast.TokenOperator(tok.Type); op != ast.OpNone && op.IsUnary() {
			p.next()
			right, e := p.parseExpression(unaryBindingPower)
			if e != nil {
				return nil, e
			}
			return &ast.UnaryExpression{Token: tok, Operator: op, Right: right}, nil
		}
		// unary & is the reference operator spelled like bitwise and
		if tok.Type == lexer.AMPERSAND {
			p.next()
			right, e := p.parseExpression(unaryBindingPower)
			if e != nil {
				return nil, e
			}
			return &ast.UnaryExpression{Token: tok, Operator: ast.OpReference, Right: right}, nil
		}
		if e := p.checkIllegal(); e != nil {
			return nil, e
		}
		return nil, p.syntaxErr(tok.Pos, "Unexpected token `%s` in expression", tok.Type)
	}
}

// parseLiteral converts the current literal token into its AST node.
func (p *Parser) parseLiteral() (ast.Expression, *errors.Error) {
	tok := p.cur
	p.next()

	switch tok.Type {
	case lexer.NUMBER:
		if strings.ContainsAny(tok.Literal, ".eE") {
			f, err := strconv.ParseFloat(tok.Literal, 64)
			if err != nil {
				return nil, p.syntaxErr(tok.Pos, "Illegal number literal: %q", tok.Literal)
			}
			return &ast.FloatLiteral{Token: tok, Value: f}, nil
		}
		i, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.syntaxErr(tok.Pos, "Illegal number literal: %q", tok.Literal)
		}
		return &ast.IntegerLiteral{Token: tok, Value: i}, nil
	case lexer.STRING:
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}, nil
	case lexer.BOOL:
		return &ast.BooleanLiteral{Token: tok, Value: tok.Literal == "true"}, nil
	case lexer.NULL:
		return &ast.NullLiteral{Token: tok}, nil
	}
	return nil, p.syntaxErr(tok.Pos, "Unexpected literal `%s`", tok.Type)
}

// parseCall parses a call argument list. Entry: current is '('.
func (p *Parser) parseCall(callee ast.Expression) (ast.Expression, *errors.Error) {
	tok := p.cur
	p.next() // consume '('

	restore := p.suspendConditionGuards()
	defer restore()

	var args []ast.Expression
	if !p.curIs(lexer.RPAREN) {
		for {
			arg, e := p.parseExpression(0)
			if e != nil {
				return nil, e
			}
			args = append(args, arg)
			if p.curIs(lexer.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	if e := p.expectConsume(lexer.RPAREN); e != nil {
		return nil, e
	}
	return &ast.CallExpression{Token: tok, Callee: callee, Arguments: args}, nil
}

// parseListLiteral parses [a, b, c]. Entry: current is '['.
func (p *Parser) parseListLiteral() (ast.Expression, *errors.Error) {
	tok := p.cur
	p.next() // consume '['

	restore := p.suspendConditionGuards()
	defer restore()

	var elems []ast.Expression
	for !p.curIs(lexer.RBRACK) {
		if p.curIs(lexer.EOF) {
			return nil, p.syntaxErr(tok.Pos, "Unterminated list literal")
		}
		el, e := p.parseExpression(0)
		if e != nil {
			return nil, e
		}
		elems = append(elems, el)
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.next() // consume ']'
	return &ast.ListLiteral{Token: tok, Elements: elems}, nil
}

// parseMapLiteral parses {k: v, ...}. Entry: current is '{'.
func (p *Parser) parseMapLiteral() (ast.Expression, *errors.Error) {
	tok := p.cur
	p.next() // consume '{'

	restore := p.suspendConditionGuards()
	defer restore()

	var entries []ast.MapEntry
	for !p.curIs(lexer.RBRACE) {
		if p.curIs(lexer.EOF) {
			return nil, p.syntaxErr(tok.Pos, "Unterminated map literal")
		}
		key, e := p.parseExpression(0)
		if e != nil {
			return nil, e
		}
		if e := p.expectConsume(lexer.COLON); e != nil {
			return nil, e
		}
		val, e := p.parseExpression(0)
		if e != nil {
			return nil, e
		}
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.next() // consume '}'
	return &ast.MapLiteral{Token: tok, Entries: entries}, nil
}

// parseTupleOrParenExpr parses (), (expr) or (a, b, ...). Entry: current is '('.
func (p *Parser) parseTupleOrParenExpr() (ast.Expression, *errors.Error) {
	tok := p.cur
	p.next() // consume '('

	restore := p.suspendConditionGuards()
	defer restore()

	if p.curIs(lexer.RPAREN) {
		p.next()
		return &ast.TupleLiteral{Token: tok}, nil
	}

	first, e := p.parseExpression(0)
	if e != nil {
		return nil, e
	}

	switch p.cur.Type {
	case lexer.COMMA:
		elems := []ast.Expression{first}
		for p.curIs(lexer.COMMA) {
			p.next()
			if p.curIs(lexer.RPAREN) {
				break
			}
			el, e := p.parseExpression(0)
			if e != nil {
				return nil, e
			}
			elems = append(elems, el)
		}
		if e := p.expectConsume(lexer.RPAREN); e != nil {
			return nil, e
		}
		return &ast.TupleLiteral{Token: tok, Elements: elems}, nil
	case lexer.RPAREN:
		p.next()
		return first, nil
	default:
		return nil, p.syntaxErr(p.cur.Pos, "Expect ')' or ',' after expression in parentheses")
	}
}

// parseInitExpr parses the braces of TypeName{...} and detects the init
// mode from the first argument. Entry: current is '{'.
func (p *Parser) parseInitExpr(typeExpr ast.Expression) (ast.Expression, *errors.Error) {
	tok := p.cur
	p.next() // consume '{'

	restore := p.suspendConditionGuards()
	defer restore()

	var args []ast.InitArg
	mode := ast.InitPositional
	decided := false

	for !p.curIs(lexer.RBRACE) {
		if p.curIs(lexer.EOF) {
			return nil, p.syntaxErr(tok.Pos, "Unterminated struct initialization expression")
		}
		if !decided {
			switch {
			case p.curIs(lexer.IDENT) && p.peekIs(lexer.COLON):
				mode = ast.InitNamed
			case p.curIs(lexer.IDENT) && (p.peekIs(lexer.COMMA) || p.peekIs(lexer.RBRACE)):
				mode = ast.InitShorthand
			default:
				mode = ast.InitPositional
			}
			decided = true
		}

		switch mode {
		case ast.InitPositional:
			val, e := p.parseExpression(0)
			if e != nil {
				return nil, e
			}
			args = append(args, ast.InitArg{Value: val})
		case ast.InitNamed:
			if e := p.expectNamed(lexer.IDENT, "field name"); e != nil {
				return nil, e
			}
			name := p.cur.Literal
			p.next() // consume field name
			if e := p.expectConsume(lexer.COLON); e != nil {
				return nil, e
			}
			val, e := p.parseExpression(0)
			if e != nil {
				return nil, e
			}
			args = append(args, ast.InitArg{Name: name, Value: val})
		case ast.InitShorthand:
			if e := p.expectNamed(lexer.IDENT, "field name"); e != nil {
				return nil, e
			}
			name := p.cur.Literal
			args = append(args, ast.InitArg{
				Name:  name,
				Value: &ast.Identifier{Token: p.cur, Value: name},
			})
			p.next() // consume identifier
		}

		if p.curIs(lexer.COMMA) {
			p.next()
		} else if !p.curIs(lexer.RBRACE) {
			return nil, p.syntaxErr(p.cur.Pos,
				"Expect `,` or `}` in struct initialization expression, got `%s`", p.cur.Type)
		}
	}
	p.next() // consume '}'
	return &ast.StructInitExpression{Token: tok, Type: typeExpr, Args: args, Mode: mode}, nil
}

// parseFunctionLiteral parses a function literal after its 'func' token.
// Entry: current is '('.
func (p *Parser) parseFunctionLiteral(funcTok lexer.Token) (ast.Expression, *errors.Error) {
	params, e := p.parseParameters()
	if e != nil {
		return nil, e
	}

	if p.curIs(lexer.DOUBLE_ARROW) {
		p.next() // consume '=>'
		body, e := p.parseExpression(0)
		if e != nil {
			return nil, e
		}
		return &ast.FunctionLiteral{Token: funcTok, Params: params, ExprBody: body}, nil
	}

	if e := p.expect(lexer.LBRACE); e != nil {
		return nil, e
	}
	block, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionLiteral{Token: funcTok, Params: params, Body: block}, nil
}

// parseParameters parses a function parameter list. Entry: current is '('.
// Stop: current is the token after ')'.
func (p *Parser) parseParameters() (ast.Parameters, *errors.Error) {
	var params ast.Parameters

	p.next() // consume '('
	for {
		if p.curIs(lexer.RPAREN) {
			p.next()
			return params, nil
		}
		if e := p.expectNamed(lexer.IDENT, "parameter name or `)`"); e != nil {
			return params, e
		}
		name := p.cur.Literal
		namePos := p.cur.Pos
		p.next() // consume name

		switch p.cur.Type {
		case lexer.ASSIGN:
			p.next() // consume '='
			def, e := p.parseExpression(0)
			if e != nil {
				return params, e
			}
			params.Defaulted = append(params.Defaulted, ast.DefaultParam{Name: name, TypeName: "Any", Default: def})

		case lexer.COLON:
			p.next() // consume ':'
			if e := p.expectNamed(lexer.IDENT, "type name"); e != nil {
				return params, e
			}
			typeName := p.cur.Literal
			p.next() // consume type name
			if p.curIs(lexer.ASSIGN) {
				p.next() // consume '='
				def, e := p.parseExpression(0)
				if e != nil {
					return params, e
				}
				params.Defaulted = append(params.Defaulted, ast.DefaultParam{Name: name, TypeName: typeName, Default: def})
			} else {
				if len(params.Defaulted) > 0 {
					return params, p.syntaxErr(namePos, "Positional parameter %q cannot follow a defaulted parameter", name)
				}
				params.Positional = append(params.Positional, ast.Param{Name: name, TypeName: typeName})
			}

		case lexer.TRIPLE_DOT:
			if params.Len() > 0 {
				return params, p.syntaxErr(namePos, "A variadic parameter must be the only parameter")
			}
			params.Variadic = name
			p.next() // consume '...'
			if !p.curIs(lexer.RPAREN) {
				return params, p.syntaxErr(p.cur.Pos, "A variadic parameter must be the only parameter")
			}
			p.next() // consume ')'
			return params, nil

		default:
			if len(params.Defaulted) > 0 {
				return params, p.syntaxErr(namePos, "Positional parameter %q cannot follow a defaulted parameter", name)
			}
			params.Positional = append(params.Positional, ast.Param{Name: name, TypeName: "Any"})
		}

		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
}

// suspendConditionGuards clears the condition/increment parsing flags for the
// duration of a bracketed subexpression and returns a restore func. Inside
// any (), [], {} the init-expression form is unambiguous again.
func (p *Parser) suspendConditionGuards() func() {
	savedInit := p.noInitExpr
	savedSemi := p.needSemicolon
	p.noInitExpr = false
	p.needSemicolon = true
	return func() {
		p.noInitExpr = savedInit
		p.needSemicolon = savedSemi
	}
}

// parseCondition parses a loop or if condition. Parentheses are optional;
// without them the init-expression form is suppressed so the body brace is
// not swallowed.
func (p *Parser) parseCondition() (ast.Expression, *errors.Error) {
	if p.curIs(lexer.LPAREN) {
		p.next() // consume '('
		restore := p.suspendConditionGuards()
		cond, e := p.parseExpression(0)
		restore()
		if e != nil {
			return nil, e
		}
		if e := p.expectConsume(lexer.RPAREN); e != nil {
			return nil, e
		}
		return cond, nil
	}

	saved := p.noInitExpr
	p.noInitExpr = true
	cond, e := p.parseExpression(0)
	p.noInitExpr = saved
	if e != nil {
		return nil, e
	}
	return cond, nil
}
