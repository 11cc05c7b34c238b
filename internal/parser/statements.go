package parser

import (
	"github.com/puqiar/go-fig/internal/ast"
	"github.com/puqiar/go-fig/internal/errors"
	"github.com/puqiar/go-fig/internal/lexer"
)

// parseStatement dispatches on the leading token of a statement.
func (p *Parser) parseStatement() (ast.Statement, *errors.Error) {
	if e := p.checkIllegal(); e != nil {
		return nil, e
	}

	switch p.cur.Type {
	case lexer.IMPORT:
		return p.parseImport()

	case lexer.PUBLIC:
		pubTok := p.cur
		p.next() // consume 'public'
		switch p.cur.Type {
		case lexer.VAR, lexer.CONST:
			return p.parseVarDef(true)
		case lexer.FUNC:
			if !p.peekIs(lexer.IDENT) {
				return nil, p.syntaxErr(p.pk.Pos, "Expected function name after `public func`")
			}
			funcTok := p.cur
			p.next() // consume 'func'
			return p.parseFunctionDef(funcTok, true)
		case lexer.STRUCT:
			return p.parseStructDefStatement(true)
		case lexer.INTERFACE:
			return p.parseInterfaceDefStatement(true)
		default:
			return nil, p.syntaxErr(pubTok.Pos,
				"Expected `var`, `const`, `func`, `struct` or `interface` after `public`")
		}

	case lexer.VAR, lexer.CONST:
		return p.parseVarDef(false)

	case lexer.FUNC:
		if p.peekIs(lexer.IDENT) {
			funcTok := p.cur
			p.next() // consume 'func'
			return p.parseFunctionDef(funcTok, false)
		}
		// function literal in expression position
		return p.parseExpressionStatement()

	case lexer.STRUCT:
		return p.parseStructDefStatement(false)

	case lexer.INTERFACE:
		return p.parseInterfaceDefStatement(false)

	case lexer.IMPL:
		return p.parseImplement()

	case lexer.IF:
		return p.parseIf()

	case lexer.ELSE:
		return nil, p.syntaxErr(p.cur.Pos, "`else` without matching `if`")

	case lexer.LBRACE:
		return p.parseBlockStatement()

	case lexer.WHILE:
		return p.parseWhile()

	case lexer.FOR:
		return p.parseFor()

	case lexer.RETURN:
		return p.parseReturn()

	case lexer.BREAK:
		tok := p.cur
		p.next()
		if e := p.expectSemicolon(); e != nil {
			return nil, e
		}
		return &ast.BreakStatement{Token: tok}, nil

	case lexer.CONTINUE:
		tok := p.cur
		p.next()
		if e := p.expectSemicolon(); e != nil {
			return nil, e
		}
		return &ast.ContinueStatement{Token: tok}, nil

	case lexer.TRY:
		return p.parseTry()

	case lexer.THROW:
		return p.parseThrow()

	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseExpressionStatement() (ast.Statement, *errors.Error) {
	tok := p.cur
	expr, e := p.parseExpression(0)
	if e != nil {
		return nil, e
	}
	if e := p.expectSemicolon(); e != nil {
		return nil, e
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}, nil
}

// parseBlockStatement parses { stmt* }. Entry: current is '{'.
// Stop: current is the token after '}'.
func (p *Parser) parseBlockStatement() (*ast.BlockStatement, *errors.Error) {
	tok := p.cur
	p.next() // consume '{'

	restore := p.suspendConditionGuards()
	defer restore()

	block := &ast.BlockStatement{Token: tok}
	for {
		if p.curIs(lexer.RBRACE) {
			p.next()
			return block, nil
		}
		if p.curIs(lexer.EOF) {
			return nil, p.syntaxErr(tok.Pos, "braces are not closed")
		}
		stmt, e := p.parseStatement()
		if e != nil {
			return nil, e
		}
		block.Statements = append(block.Statements, stmt)
	}
}

// parseVarDef parses `var`/`const` declarations. Entry: current is the
// keyword.
func (p *Parser) parseVarDef(isPublic bool) (ast.Statement, *errors.Error) {
	tok := p.cur
	isConst := p.curIs(lexer.CONST)
	p.next() // consume 'var' / 'const'

	if e := p.expectNamed(lexer.IDENT, "variable name"); e != nil {
		return nil, e
	}
	name := p.cur.Literal
	p.next()

	typeName := "Any"
	hasType := false
	if p.curIs(lexer.COLON) {
		p.next() // consume ':'
		if e := p.expectNamed(lexer.IDENT, "type name"); e != nil {
			return nil, e
		}
		typeName = p.cur.Literal
		hasType = true
		p.next()
	}

	if p.curIs(lexer.SEMICOLON) {
		p.next()
		return &ast.VarDefStatement{
			Token: tok, Name: name, TypeName: typeName,
			IsConst: isConst, IsPublic: isPublic,
		}, nil
	}

	if p.curIs(lexer.WALRUS) {
		if hasType {
			return nil, p.syntaxErr(p.cur.Pos, "`:=` cannot be combined with an explicit type annotation")
		}
		typeName = ast.TypeFollowsValue
	} else if !p.curIs(lexer.ASSIGN) {
		return nil, p.syntaxErr(p.cur.Pos, "Expected `=` or `:=`, but got `%s`", p.cur.Type)
	}
	p.next() // consume '=' / ':='

	value, e := p.parseExpression(0)
	if e != nil {
		return nil, e
	}
	if e := p.expectSemicolon(); e != nil {
		return nil, e
	}
	return &ast.VarDefStatement{
		Token: tok, Name: name, TypeName: typeName, Value: value,
		IsConst: isConst, IsPublic: isPublic,
	}, nil
}

// parseFunctionDef parses a named function definition. Entry: current is the
// function name.
func (p *Parser) parseFunctionDef(funcTok lexer.Token, isPublic bool) (ast.Statement, *errors.Error) {
	if e := p.expectNamed(lexer.IDENT, "function name"); e != nil {
		return nil, e
	}
	name := p.cur.Literal
	p.next() // consume name

	if e := p.expect(lexer.LPAREN); e != nil {
		return nil, e
	}
	params, e := p.parseParameters()
	if e != nil {
		return nil, e
	}

	returnType := "Any"
	if p.curIs(lexer.ARROW) {
		p.next() // consume '->'
		if e := p.expectNamed(lexer.IDENT, "return type"); e != nil {
			return nil, e
		}
		returnType = p.cur.Literal
		p.next()
	}

	if e := p.expect(lexer.LBRACE); e != nil {
		return nil, e
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDefStatement{
		Token: funcTok, Name: name, Params: params,
		ReturnType: returnType, Body: body, IsPublic: isPublic,
	}, nil
}

// parseStructDefStatement parses a struct definition. Entry: current is
// 'struct'.
func (p *Parser) parseStructDefStatement(isPublic bool) (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'struct'
	if e := p.expectNamed(lexer.IDENT, "struct name"); e != nil {
		return nil, e
	}
	name := p.cur.Literal
	p.next() // consume name

	if e := p.expectConsume(lexer.LBRACE); e != nil {
		return nil, e
	}

	restore := p.suspendConditionGuards()
	defer restore()

	body := &ast.BlockStatement{Token: tok}
	var fields []ast.FieldDecl

	for {
		switch p.cur.Type {
		case lexer.RBRACE:
			p.next()
			return &ast.StructDefStatement{
				Token: tok, Name: name, Fields: fields, Body: body, IsPublic: isPublic,
			}, nil

		case lexer.EOF:
			return nil, p.syntaxErr(tok.Pos, "braces are not closed")

		case lexer.IDENT, lexer.CONST, lexer.FINAL:
			field, e := p.parseStructField(false)
			if e != nil {
				return nil, e
			}
			fields = append(fields, *field)

		case lexer.PUBLIC:
			switch p.pk.Type {
			case lexer.CONST, lexer.FINAL, lexer.IDENT:
				p.next() // consume 'public'
				field, e := p.parseStructField(true)
				if e != nil {
					return nil, e
				}
				fields = append(fields, *field)
			case lexer.FUNC:
				p.next() // consume 'public'
				funcTok := p.cur
				p.next() // consume 'func'
				method, e := p.parseFunctionDef(funcTok, true)
				if e != nil {
					return nil, e
				}
				body.Statements = append(body.Statements, method)
			case lexer.STRUCT:
				p.next() // consume 'public'
				nested, e := p.parseStructDefStatement(true)
				if e != nil {
					return nil, e
				}
				body.Statements = append(body.Statements, nested)
			default:
				return nil, p.syntaxErr(p.pk.Pos, "Invalid syntax in struct body after `public`")
			}

		case lexer.FUNC:
			funcTok := p.cur
			p.next() // consume 'func'
			method, e := p.parseFunctionDef(funcTok, false)
			if e != nil {
				return nil, e
			}
			body.Statements = append(body.Statements, method)

		case lexer.STRUCT:
			nested, e := p.parseStructDefStatement(false)
			if e != nil {
				return nil, e
			}
			body.Statements = append(body.Statements, nested)

		case lexer.VAR:
			return nil, p.syntaxErr(p.cur.Pos, "Variables are not allowed to be defined within a structure")

		default:
			return nil, p.syntaxErr(p.cur.Pos, "Invalid syntax in struct body: `%s`", p.cur.Type)
		}
	}
}

// parseStructField parses one field declaration. Entry: current is the field
// name or a `const`/`final` modifier.
func (p *Parser) parseStructField(isPublic bool) (*ast.FieldDecl, *errors.Error) {
	isConst := false
	if p.curIs(lexer.CONST) || p.curIs(lexer.FINAL) {
		isConst = true
		p.next()
	}

	if e := p.expectNamed(lexer.IDENT, "field name"); e != nil {
		return nil, e
	}
	name := p.cur.Literal
	p.next()

	typeName := "Any"
	if p.curIs(lexer.COLON) {
		p.next()
		if e := p.expectNamed(lexer.IDENT, "type name"); e != nil {
			return nil, e
		}
		typeName = p.cur.Literal
		p.next()
	}

	var def ast.Expression
	if p.curIs(lexer.ASSIGN) {
		p.next()
		var e *errors.Error
		def, e = p.parseExpression(0)
		if e != nil {
			return nil, e
		}
	}
	if e := p.expectSemicolon(); e != nil {
		return nil, e
	}

	return &ast.FieldDecl{
		Access:   ast.NewAccessModifier(isPublic, isConst),
		Name:     name,
		TypeName: typeName,
		Default:  def,
	}, nil
}

// parseInterfaceDefStatement parses an interface definition. Entry: current
// is 'interface'.
func (p *Parser) parseInterfaceDefStatement(isPublic bool) (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'interface'
	if e := p.expectNamed(lexer.IDENT, "interface name"); e != nil {
		return nil, e
	}
	name := p.cur.Literal
	p.next() // consume name

	if e := p.expectConsume(lexer.LBRACE); e != nil {
		return nil, e
	}

	restore := p.suspendConditionGuards()
	defer restore()

	var bundles []ast.Expression
	var methods []ast.InterfaceMethod

	for {
		switch {
		case p.curIs(lexer.RBRACE):
			p.next()
			return &ast.InterfaceDefStatement{
				Token: tok, Name: name, Bundles: bundles, Methods: methods, IsPublic: isPublic,
			}, nil

		case p.curIs(lexer.EOF):
			return nil, p.syntaxErr(tok.Pos, "braces are not closed")

		case p.curIs(lexer.IDENT) && p.cur.Literal == "bundle" && p.peekIs(lexer.IDENT):
			p.next() // consume 'bundle'
			for {
				if e := p.expectNamed(lexer.IDENT, "interface name"); e != nil {
					return nil, e
				}
				bundles = append(bundles, &ast.Identifier{Token: p.cur, Value: p.cur.Literal})
				p.next()
				if p.curIs(lexer.COMMA) {
					p.next()
					continue
				}
				break
			}
			if e := p.expectConsume(lexer.SEMICOLON); e != nil {
				return nil, e
			}

		case p.curIs(lexer.IDENT):
			method, e := p.parseInterfaceMethod()
			if e != nil {
				return nil, e
			}
			methods = append(methods, *method)

		default:
			return nil, p.syntaxErr(p.cur.Pos, "Invalid syntax in interface body: `%s`", p.cur.Type)
		}
	}
}

// parseInterfaceMethod parses one method declaration of an interface body.
// Entry: current is the method name.
func (p *Parser) parseInterfaceMethod() (*ast.InterfaceMethod, *errors.Error) {
	name := p.cur.Literal
	p.next() // consume name

	if e := p.expect(lexer.LPAREN); e != nil {
		return nil, e
	}
	params, e := p.parseParameters()
	if e != nil {
		return nil, e
	}

	returnType := "Any"
	if p.curIs(lexer.ARROW) {
		p.next() // consume '->'
		if e := p.expectNamed(lexer.IDENT, "return type"); e != nil {
			return nil, e
		}
		returnType = p.cur.Literal
		p.next()
	}

	if p.curIs(lexer.LBRACE) {
		body, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		return &ast.InterfaceMethod{Name: name, Params: params, ReturnType: returnType, DefaultBody: body}, nil
	}

	if e := p.expectConsume(lexer.SEMICOLON); e != nil {
		return nil, e
	}
	return &ast.InterfaceMethod{Name: name, Params: params, ReturnType: returnType}, nil
}

// parseImplement parses `impl Interface for Struct { method* }`. Entry:
// current is 'impl'.
func (p *Parser) parseImplement() (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'impl'

	if e := p.expectNamed(lexer.IDENT, "interface name"); e != nil {
		return nil, e
	}
	interfaceName := p.cur.Literal
	p.next()

	if e := p.expectConsume(lexer.FOR); e != nil {
		return nil, e
	}
	if e := p.expectNamed(lexer.IDENT, "struct name"); e != nil {
		return nil, e
	}
	structName := p.cur.Literal
	p.next()

	if e := p.expectConsume(lexer.LBRACE); e != nil {
		return nil, e
	}

	restore := p.suspendConditionGuards()
	defer restore()

	var methods []ast.ImplMethod
	for {
		switch {
		case p.curIs(lexer.RBRACE):
			p.next()
			return &ast.ImplementStatement{
				Token: tok, InterfaceName: interfaceName, StructName: structName, Methods: methods,
			}, nil

		case p.curIs(lexer.EOF):
			return nil, p.syntaxErr(tok.Pos, "braces are not closed")

		case p.curIs(lexer.IDENT):
			name := p.cur.Literal
			p.next() // consume method name
			if e := p.expect(lexer.LPAREN); e != nil {
				return nil, e
			}
			params, e := p.parseParameters()
			if e != nil {
				return nil, e
			}
			if e := p.expect(lexer.LBRACE); e != nil {
				return nil, e
			}
			body, err := p.parseBlockStatement()
			if err != nil {
				return nil, err
			}
			methods = append(methods, ast.ImplMethod{Name: name, Params: params, Body: body})

		default:
			return nil, p.syntaxErr(p.cur.Pos, "Invalid syntax in impl body: `%s`", p.cur.Type)
		}
	}
}

// parseIf parses if / else if / else. Entry: current is 'if'.
func (p *Parser) parseIf() (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'if'

	cond, e := p.parseCondition()
	if e != nil {
		return nil, e
	}
	if e := p.expect(lexer.LBRACE); e != nil {
		return nil, e
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}

	stmt := &ast.IfStatement{Token: tok, Condition: cond, Body: body}
	for p.curIs(lexer.ELSE) {
		p.next() // consume 'else'
		if p.curIs(lexer.IF) {
			p.next() // consume 'if'
			elifCond, e := p.parseCondition()
			if e != nil {
				return nil, e
			}
			if e := p.expect(lexer.LBRACE); e != nil {
				return nil, e
			}
			elifBody, err := p.parseBlockStatement()
			if err != nil {
				return nil, err
			}
			stmt.ElseIfs = append(stmt.ElseIfs, ast.ElseIfClause{Condition: elifCond, Body: elifBody})
			continue
		}
		if e := p.expect(lexer.LBRACE); e != nil {
			return nil, e
		}
		elseBody, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
		break
	}
	return stmt, nil
}

// parseWhile parses while loops. Entry: current is 'while'.
func (p *Parser) parseWhile() (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'while'

	cond, e := p.parseCondition()
	if e != nil {
		return nil, e
	}
	if e := p.expect(lexer.LBRACE); e != nil {
		return nil, e
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: tok, Condition: cond, Body: body}, nil
}

// parseFor parses the C-style for loop. Entry: current is 'for'.
func (p *Parser) parseFor() (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'for'

	paren := p.curIs(lexer.LPAREN)
	if paren {
		p.next() // consume '('
	}

	initStmt, e := p.parseStatement()
	if e != nil {
		return nil, e
	}

	var cond ast.Expression
	if paren {
		cond, e = p.parseExpression(0)
	} else {
		saved := p.noInitExpr
		p.noInitExpr = true
		cond, e = p.parseExpression(0)
		p.noInitExpr = saved
	}
	if e != nil {
		return nil, e
	}
	if e := p.expectConsume(lexer.SEMICOLON); e != nil {
		return nil, e
	}

	// without parentheses the increment clause is required; inside
	// parentheses it may be left empty
	var incr ast.Statement
	if !paren || !p.curIs(lexer.RPAREN) {
		incr, e = p.parseIncrementStatement(paren)
		if e != nil {
			return nil, e
		}
	}
	if paren {
		if e := p.expectConsume(lexer.RPAREN); e != nil {
			return nil, e
		}
	}

	if e := p.expect(lexer.LBRACE); e != nil {
		return nil, e
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Token: tok, Init: initStmt, Condition: cond, Increment: incr, Body: body}, nil
}

// parseIncrementStatement parses the third clause of a for loop. Only
// assignments and expression statements are allowed.
func (p *Parser) parseIncrementStatement(paren bool) (ast.Statement, *errors.Error) {
	switch p.cur.Type {
	case lexer.LBRACE:
		return nil, p.syntaxErr(p.cur.Pos, "A block statement cannot be used as a for loop increment")
	case lexer.IF, lexer.WHILE, lexer.FOR, lexer.RETURN, lexer.BREAK, lexer.CONTINUE,
		lexer.TRY, lexer.THROW, lexer.IMPORT, lexer.VAR, lexer.CONST,
		lexer.STRUCT, lexer.INTERFACE, lexer.IMPL, lexer.PUBLIC:
		return nil, p.syntaxErr(p.cur.Pos, "Control flow statements cannot be used as a for loop increment")
	case lexer.FUNC:
		if p.peekIs(lexer.IDENT) {
			return nil, p.syntaxErr(p.cur.Pos, "Control flow statements cannot be used as a for loop increment")
		}
	}

	savedSemi := p.needSemicolon
	savedInit := p.noInitExpr
	p.needSemicolon = false
	p.noInitExpr = !paren
	stmt, e := p.parseStatement()
	p.needSemicolon = savedSemi
	p.noInitExpr = savedInit
	return stmt, e
}

// parseReturn parses `return expr?;`. Entry: current is 'return'.
func (p *Parser) parseReturn() (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'return'

	if p.curIs(lexer.SEMICOLON) {
		p.next()
		return &ast.ReturnStatement{Token: tok}, nil
	}

	value, e := p.parseExpression(0)
	if e != nil {
		return nil, e
	}
	if e := p.expectSemicolon(); e != nil {
		return nil, e
	}
	return &ast.ReturnStatement{Token: tok, Value: value}, nil
}

// parseTry parses try / catch / finally. Entry: current is 'try'.
func (p *Parser) parseTry() (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'try'

	if e := p.expect(lexer.LBRACE); e != nil {
		return nil, e
	}
	body, err := p.parseBlockStatement()
	if err != nil {
		return nil, err
	}

	stmt := &ast.TryStatement{Token: tok, Body: body}

	for p.curIs(lexer.CATCH) {
		p.next() // consume 'catch'
		if e := p.expectConsume(lexer.LPAREN); e != nil {
			return nil, e
		}
		if e := p.expectNamed(lexer.IDENT, "error variable name"); e != nil {
			return nil, e
		}
		varName := p.cur.Literal
		p.next()

		typeName := ""
		if p.curIs(lexer.COLON) {
			p.next()
			if e := p.expectNamed(lexer.IDENT, "type name"); e != nil {
				return nil, e
			}
			typeName = p.cur.Literal
			p.next()
		}
		if e := p.expectConsume(lexer.RPAREN); e != nil {
			return nil, e
		}
		if e := p.expect(lexer.LBRACE); e != nil {
			return nil, e
		}
		catchBody, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		stmt.Catches = append(stmt.Catches, ast.CatchClause{VarName: varName, TypeName: typeName, Body: catchBody})
	}

	if p.curIs(lexer.FINALLY) {
		p.next() // consume 'finally'
		if e := p.expect(lexer.LBRACE); e != nil {
			return nil, e
		}
		finallyBody, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		stmt.Finally = finallyBody
	}

	if len(stmt.Catches) == 0 && stmt.Finally == nil {
		return nil, p.syntaxErr(tok.Pos, "`try` requires at least one `catch` or a `finally` block")
	}
	return stmt, nil
}

// parseThrow parses `throw expr;`. Entry: current is 'throw'.
func (p *Parser) parseThrow() (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'throw'

	value, e := p.parseExpression(0)
	if e != nil {
		return nil, e
	}
	if e := p.expectSemicolon(); e != nil {
		return nil, e
	}
	return &ast.ThrowStatement{Token: tok, Value: value}, nil
}

// parseImport parses `import a.b.c;`. Entry: current is 'import'.
func (p *Parser) parseImport() (ast.Statement, *errors.Error) {
	tok := p.cur
	p.next() // consume 'import'

	var path []string
	for {
		if e := p.expectNamed(lexer.IDENT, "module name"); e != nil {
			return nil, e
		}
		path = append(path, p.cur.Literal)
		p.next()

		if p.curIs(lexer.SEMICOLON) {
			p.next()
			return &ast.ImportStatement{Token: tok, Path: path}, nil
		}
		if p.curIs(lexer.DOT) {
			p.next()
			continue
		}
		return nil, p.syntaxErr(p.cur.Pos, "Expected `.` or `;` in import path, but got `%s`", p.cur.Type)
	}
}
