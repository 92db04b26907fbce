// Package parser is a recursive-descent parser for Neo source, producing
// the internal/ast.Node sibling chain and resolving every reference and
// call against internal/symtab as it goes.
//
// Grounded on sentra's internal/parser (same match/advance/peek/expect
// shape, same precedence-table approach to binary operators) and on
// original_source/src/parse.c for Neo's actual grammar and diagnostic
// wording (§6, §7.1): the redeclaration and unknown symbol/type
// diagnostics below quote the original's message text.
package parser

import (
	"fmt"
	"strings"

	"neo/internal/ast"
	"neo/internal/diagnostics"
	"neo/internal/lexer"
	"neo/internal/symtab"
	"neo/internal/types"
)

var precedence = map[lexer.TokenType]int{
	lexer.TokenEqEq:  1,
	lexer.TokenNotEq: 1,
	lexer.TokenLT:    1,
	lexer.TokenGT:    1,
	lexer.TokenLE:    1,
	lexer.TokenGE:    1,
	lexer.TokenPlus:  2,
	lexer.TokenMinus: 2,
	lexer.TokenStar:  3,
	lexer.TokenSlash: 3,
}

var binaryOps = map[lexer.TokenType]ast.Operator{
	lexer.TokenPlus:  ast.Add,
	lexer.TokenMinus: ast.Sub,
	lexer.TokenStar:  ast.Mul,
	lexer.TokenSlash: ast.Div,
	lexer.TokenEqEq:  ast.Cmp,
	lexer.TokenNotEq: ast.CmpNot,
	lexer.TokenLT:    ast.CmpLt,
	lexer.TokenGT:    ast.CmpGt,
	lexer.TokenLE:    ast.CmpLtEq,
	lexer.TokenGE:    ast.CmpGtEq,
}

// ParseError is a fatal, positioned user error (§7.1): the first one
// aborts the parse, with no recovery attempt.
type ParseError struct {
	*diagnostics.Diagnostic
}

// Parser holds parse state: the token stream, the current lexical scope,
// and the file identity used to stamp spans and diagnostics.
type Parser struct {
	tokens []lexer.Token
	pos    int
	file   string
	lines  []string
	scope  *symtab.Scope
}

// New creates a Parser over tokens, resolving names against global (the
// process-wide symbol table, already seeded with the primitive types).
func New(tokens []lexer.Token, file, source string, global *symtab.Scope) *Parser {
	return &Parser{tokens: tokens, file: file, lines: strings.Split(source, "\n"), scope: global}
}

func (p *Parser) peek() lexer.Token  { return p.tokens[p.pos] }
func (p *Parser) isAtEnd() bool      { return p.peek().Type == lexer.TokenEOF }
func (p *Parser) previous() lexer.Token {
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(t lexer.TokenType) bool {
	return !p.isAtEnd() && p.peek().Type == t
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) span(tok lexer.Token) ast.Span {
	return ast.Span{Line: tok.Line, Col: tok.Col}
}

func (p *Parser) sourceLine(line int) string {
	if line-1 >= 0 && line-1 < len(p.lines) {
		return p.lines[line-1]
	}
	return ""
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...interface{}) error {
	loc := diagnostics.Location{File: p.file, Line: tok.Line, Column: tok.Col}
	return &ParseError{diagnostics.Positioned(loc, format, args...).WithSource(p.sourceLine(tok.Line))}
}

// expect consumes a token of type t or returns a fatal "expected X, got Y"
// diagnostic, matching original_source's
// "at line %d, col %d: expected '%s', got '%.*s' instead".
func (p *Parser) expect(t lexer.TokenType, context string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	got := p.peek()
	return lexer.Token{}, p.errorf(got, "expected '%s' %s, got '%s' instead", t, context, got.Lexeme)
}

// resolveType resolves name against the current scope and requires it to
// be a type symbol.
func (p *Parser) resolveType(name string, tok lexer.Token) (*types.Type, error) {
	sym := symtab.Find(p.scope, name)
	if sym == nil {
		return nil, p.errorf(tok, "unknown type '%s'", name)
	}
	if sym.Kind != symtab.TypeSym {
		return nil, p.errorf(tok, "symbol '%s' is not a type", name)
	}
	return sym.Type.(*types.Type), nil
}

// Parse parses the whole token stream into a sibling chain of top-level
// var/func declarations.
func (p *Parser) Parse() (*ast.Node, error) {
	var head, tail *ast.Node
	for !p.isAtEnd() {
		var decl *ast.Node
		var err error
		switch {
		case p.match(lexer.TokenVar):
			decl, err = p.varDecl()
		case p.match(lexer.TokenFunc):
			decl, err = p.funcDecl()
		default:
			err = p.errorf(p.peek(), "expected top-level 'var' or 'func' declaration, got '%s' instead", p.peek().Lexeme)
		}
		if err != nil {
			return nil, err
		}
		if head == nil {
			head, tail = decl, decl
		} else {
			tail.Next = decl
			tail = decl
		}
	}
	return head, nil
}

func (p *Parser) declareSymbol(kind symtab.Kind, name string, node *ast.Node, ty *types.Type, tok lexer.Token) error {
	existed := p.scope.Add(&symtab.Symbol{Kind: kind, Name: name, Node: node, Type: ty})
	if existed {
		return p.errorf(tok, "symbol '%s' redeclared in scope", name)
	}
	return nil
}

func (p *Parser) varDecl() (*ast.Node, error) {
	nameTok, err := p.expect(lexer.TokenIdent, "after 'var'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenColon, "after variable name"); err != nil {
		return nil, err
	}
	typeTok, err := p.expect(lexer.TokenIdent, "as variable type")
	if err != nil {
		return nil, err
	}
	ty, err := p.resolveType(typeTok.Lexeme, typeTok)
	if err != nil {
		return nil, err
	}

	n := ast.New(ast.VarDecl, p.span(nameTok))
	n.Name = nameTok.Lexeme
	n.VarType = ty
	n.Type = ty

	if p.match(lexer.TokenEqual) {
		init, err := p.expression()
		if err != nil {
			return nil, err
		}
		n.Init = init
	}
	if _, err := p.expect(lexer.TokenSemi, "after variable declaration"); err != nil {
		return nil, err
	}
	if err := p.declareSymbol(symtab.Var, n.Name, n, ty, nameTok); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) funcDecl() (*ast.Node, error) {
	nameTok, err := p.expect(lexer.TokenIdent, "after 'func'")
	if err != nil {
		return nil, err
	}
	n := ast.New(ast.FuncDecl, p.span(nameTok))
	n.Name = nameTok.Lexeme
	n.RetType = &types.Primitives[types.Void]

	// Register the function in the enclosing scope before parsing its
	// body (enables forward reference / direct recursion), then push a
	// child scope holding a self-reference, matching §3.3: "each function
	// creates a child scope that holds its parameters and a
	// self-reference (enabling direct recursion)."
	if err := p.declareSymbol(symtab.Func, n.Name, n, n.RetType, nameTok); err != nil {
		return nil, err
	}

	outer := p.scope
	p.scope = symtab.NewChild(n.Name, outer)
	defer func() { symtab.Free(p.scope); p.scope = outer }()
	p.scope.Add(&symtab.Symbol{Kind: symtab.Func, Name: n.Name, Node: n, Type: n.RetType})

	if _, err := p.expect(lexer.TokenLParen, "after function name"); err != nil {
		return nil, err
	}
	if !p.check(lexer.TokenRParen) {
		for {
			paramTok, err := p.expect(lexer.TokenIdent, "as parameter name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenColon, "after parameter name"); err != nil {
				return nil, err
			}
			typeTok, err := p.expect(lexer.TokenIdent, "as parameter type")
			if err != nil {
				return nil, err
			}
			ty, err := p.resolveType(typeTok.Lexeme, typeTok)
			if err != nil {
				return nil, err
			}
			if err := p.declareSymbol(symtab.Var, paramTok.Lexeme, nil, ty, paramTok); err != nil {
				return nil, fmt.Errorf("function parameter '%s' redeclared in scope", paramTok.Lexeme)
			}
			n.Params = append(n.Params, ast.Param{Name: paramTok.Lexeme, Type: ty})
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.TokenRParen, "to close parameter list"); err != nil {
		return nil, err
	}

	if p.match(lexer.TokenArrow) {
		retTok, err := p.expect(lexer.TokenIdent, "as return type")
		if err != nil {
			return nil, err
		}
		ty, err := p.resolveType(retTok.Lexeme, retTok)
		if err != nil {
			return nil, err
		}
		n.RetType = ty
		n.Type = ty
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}
	n.Body = body
	return n, nil
}

// block parses a brace-delimited sequence of statements.
func (p *Parser) block() (*ast.Node, error) {
	if _, err := p.expect(lexer.TokenLBrace, "to open a block"); err != nil {
		return nil, err
	}
	var head, tail *ast.Node
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		if head == nil {
			head, tail = stmt, stmt
		} else {
			tail.Next = stmt
			tail = stmt
		}
	}
	if _, err := p.expect(lexer.TokenRBrace, "to close a block"); err != nil {
		return nil, err
	}
	return head, nil
}

func (p *Parser) statement() (*ast.Node, error) {
	switch {
	case p.match(lexer.TokenVar):
		return p.varDecl()
	case p.match(lexer.TokenIf):
		return p.condStmt()
	case p.match(lexer.TokenReturn):
		return p.returnStmt()
	default:
		return p.assignOrExprStmt()
	}
}

func (p *Parser) condStmt() (*ast.Node, error) {
	ifTok := p.previous()
	if _, err := p.expect(lexer.TokenLParen, "after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenRParen, "to close 'if' condition"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	n := ast.New(ast.CondStmt, p.span(ifTok))
	n.Cond = cond
	n.Body = body

	if p.match(lexer.TokenElse) {
		elseTok := p.previous()
		elseBody, err := p.block()
		if err != nil {
			return nil, err
		}
		elseNode := ast.New(ast.CondStmt, p.span(elseTok))
		elseNode.Body = elseBody
		n.Next = elseNode
	}
	return n, nil
}

func (p *Parser) returnStmt() (*ast.Node, error) {
	retTok := p.previous()
	n := ast.New(ast.ReturnStmt, p.span(retTok))
	if !p.check(lexer.TokenSemi) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		n.RetValue = value
	}
	_, err := p.expect(lexer.TokenSemi, "after return statement")
	return n, err
}

// assignOrExprStmt disambiguates `name = expr;` from a bare expression
// statement by peeking past a leading identifier.
func (p *Parser) assignOrExprStmt() (*ast.Node, error) {
	if p.check(lexer.TokenIdent) && p.tokens[p.pos+1].Type == lexer.TokenEqual {
		nameTok := p.advance()
		p.advance() // '='
		if symtab.Find(p.scope, nameTok.Lexeme) == nil {
			return nil, p.errorf(nameTok, "unknown variable '%s'", nameTok.Lexeme)
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenSemi, "after assignment"); err != nil {
			return nil, err
		}
		n := ast.New(ast.AssignStmt, p.span(nameTok))
		n.Target = nameTok.Lexeme
		n.Value = value
		return n, nil
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	_, err = p.expect(lexer.TokenSemi, "after expression statement")
	return expr, err
}

func (p *Parser) expression() (*ast.Node, error) {
	return p.binary(0)
}

func (p *Parser) binary(minPrec int) (*ast.Node, error) {
	lhs, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.peek()
		prec, ok := precedence[opTok.Type]
		if !ok || prec < minPrec {
			return lhs, nil
		}
		p.advance()
		rhs, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		n := ast.New(ast.BinaryExpr, p.span(opTok))
		n.Op = binaryOps[opTok.Type]
		n.Lhs = lhs
		n.Rhs = rhs
		lhs = n
	}
}

func (p *Parser) unary() (*ast.Node, error) {
	if p.match(lexer.TokenMinus) || p.match(lexer.TokenNot) || p.match(lexer.TokenStar) || p.match(lexer.TokenAmp) {
		opTok := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		n := ast.New(ast.UnaryExpr, p.span(opTok))
		switch opTok.Type {
		case lexer.TokenMinus:
			n.Op = ast.Neg
		case lexer.TokenNot:
			n.Op = ast.Not
		case lexer.TokenStar:
			n.Op = ast.Deref
		case lexer.TokenAmp:
			n.Op = ast.Addr
		}
		n.Lhs = operand
		return n, nil
	}
	return p.primary()
}

func (p *Parser) primary() (*ast.Node, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenInt:
		p.advance()
		var v int32
		fmt.Sscanf(tok.Lexeme, "%d", &v)
		n := ast.New(ast.ValueExpr, p.span(tok))
		n.Lit = ast.Value{Kind: ast.VInt, I: v}
		n.Type = &types.Primitives[types.Int]
		return n, nil
	case lexer.TokenChar:
		p.advance()
		n := ast.New(ast.ValueExpr, p.span(tok))
		n.Lit = ast.Value{Kind: ast.VChar, C: tok.Lexeme[1]}
		n.Type = &types.Primitives[types.Char]
		return n, nil
	case lexer.TokenTrue, lexer.TokenFalse:
		p.advance()
		n := ast.New(ast.ValueExpr, p.span(tok))
		n.Lit = ast.Value{Kind: ast.VBool, B: tok.Type == lexer.TokenTrue}
		n.Type = &types.Primitives[types.Bool]
		return n, nil
	case lexer.TokenLParen:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		_, err = p.expect(lexer.TokenRParen, "to close parenthesized expression")
		return inner, err
	case lexer.TokenIdent:
		p.advance()
		if p.match(lexer.TokenLParen) {
			return p.callExpr(tok)
		}
		sym := symtab.Find(p.scope, tok.Lexeme)
		if sym == nil {
			return nil, p.errorf(tok, "unknown variable '%s'", tok.Lexeme)
		}
		n := ast.New(ast.RefExpr, p.span(tok))
		n.Ref = tok.Lexeme
		if ty, ok := sym.Type.(*types.Type); ok {
			n.Type = ty
		}
		return n, nil
	default:
		return nil, p.errorf(tok, "invalid token '%s' while parsing expression", tok.Lexeme)
	}
}

func (p *Parser) callExpr(nameTok lexer.Token) (*ast.Node, error) {
	sym := symtab.Find(p.scope, nameTok.Lexeme)
	if sym == nil {
		return nil, p.errorf(nameTok, "unknown function '%s'", nameTok.Lexeme)
	}
	if sym.Kind != symtab.Func {
		return nil, p.errorf(nameTok, "symbol '%s' is not a function (kind: %d)", nameTok.Lexeme, sym.Kind)
	}
	n := ast.New(ast.CallExpr, p.span(nameTok))
	n.Callee = nameTok.Lexeme
	if ty, ok := sym.Type.(*types.Type); ok {
		n.Type = ty
	}

	var head, tail *ast.Node
	if !p.check(lexer.TokenRParen) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			if head == nil {
				head, tail = arg, arg
			} else {
				tail.Next = arg
				tail = arg
			}
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	n.Args = head
	_, err := p.expect(lexer.TokenRParen, "to close call arguments")
	return n, err
}
