// Package parser implements the scorex expression parser.
package parser

import (
	"fmt"

	"github.com/thomasrohde/scorex/pkg/ast"
	"github.com/thomasrohde/scorex/pkg/diagnostics"
	"github.com/thomasrohde/scorex/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into an expression tree.
func Parse(source, filename string) (ast.Expr, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}

	p := &parser{tokens: tokens, pos: 0}
	expr := p.parseConditional()
	if expr != nil && p.peek() != lexer.TokEOF {
		tok := p.current()
		p.addError(fmt.Sprintf("unexpected trailing input '%s'", tok.Value), &tok.Span)
	}
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return expr, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("expected %s, got '%s'", tokenName(typ), tok.Value), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) addError(msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, span, ""))
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokLParen:
		return "'('"
	case lexer.TokRParen:
		return "')'"
	case lexer.TokComma:
		return "','"
	case lexer.TokColon:
		return "':'"
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokEOF:
		return "end of expression"
	default:
		return fmt.Sprintf("token(%d)", t)
	}
}

// --- Precedence ladder, loosest binding first ---

func (p *parser) parseConditional() ast.Expr {
	cond := p.parseBoolOr()
	if cond == nil {
		return nil
	}
	if p.peek() != lexer.TokQuestion {
		return cond
	}
	p.advance() // consume '?'
	then := p.parseConditional()
	if then == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokColon); !ok {
		return nil
	}
	els := p.parseConditional()
	if els == nil {
		return nil
	}
	return &ast.CondExpr{
		Span: p.spanFromTo(cond.NodeSpan(), els.NodeSpan()),
		Cond: cond,
		Then: then,
		Else: els,
	}
}

// binaryLevel parses a left-associative run of the given operators over the
// next tighter level.
func (p *parser) binaryLevel(next func() ast.Expr, ops map[lexer.TokenType]ast.BinaryOp) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}
	for {
		op, ok := ops[p.peek()]
		if !ok {
			return left
		}
		p.advance()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (p *parser) parseBoolOr() ast.Expr {
	return p.binaryLevel(p.parseBoolAnd, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokPipePipe: ast.OpBoolOr,
	})
}

func (p *parser) parseBoolAnd() ast.Expr {
	return p.binaryLevel(p.parseBitOr, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokAmpAmp: ast.OpBoolAnd,
	})
}

func (p *parser) parseBitOr() ast.Expr {
	return p.binaryLevel(p.parseBitXor, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokPipe: ast.OpOr,
	})
}

func (p *parser) parseBitXor() ast.Expr {
	return p.binaryLevel(p.parseBitAnd, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokCaret: ast.OpXor,
	})
}

func (p *parser) parseBitAnd() ast.Expr {
	return p.binaryLevel(p.parseEquality, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokAmp: ast.OpAnd,
	})
}

func (p *parser) parseEquality() ast.Expr {
	return p.binaryLevel(p.parseRelational, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokEqEq:   ast.OpEqEq,
		lexer.TokBangEq: ast.OpNeq,
	})
}

func (p *parser) parseRelational() ast.Expr {
	return p.binaryLevel(p.parseShift, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokLt:   ast.OpLt,
		lexer.TokGt:   ast.OpGt,
		lexer.TokLtEq: ast.OpLtEq,
		lexer.TokGtEq: ast.OpGtEq,
	})
}

func (p *parser) parseShift() ast.Expr {
	return p.binaryLevel(p.parseAdditive, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokShl:  ast.OpShl,
		lexer.TokShr:  ast.OpShr,
		lexer.TokUshr: ast.OpUshr,
	})
}

func (p *parser) parseAdditive() ast.Expr {
	return p.binaryLevel(p.parseMultiplicative, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokPlus:  ast.OpAdd,
		lexer.TokMinus: ast.OpSub,
	})
}

func (p *parser) parseMultiplicative() ast.Expr {
	return p.binaryLevel(p.parseUnary, map[lexer.TokenType]ast.BinaryOp{
		lexer.TokStar:    ast.OpMul,
		lexer.TokSlash:   ast.OpDiv,
		lexer.TokPercent: ast.OpMod,
	})
}

func (p *parser) parseUnary() ast.Expr {
	tok := p.current()
	var op ast.UnaryOp
	switch tok.Type {
	case lexer.TokPlus:
		// Unary plus is the identity; drop it.
		p.advance()
		return p.parseUnary()
	case lexer.TokMinus:
		op = ast.OpNeg
	case lexer.TokTilde:
		op = ast.OpBitNot
	case lexer.TokBang:
		op = ast.OpBoolNot
	default:
		return p.parsePrimary()
	}
	p.advance()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return &ast.UnaryExpr{
		Span:    p.spanFromTo(tok.Span, operand.NodeSpan()),
		Op:      op,
		Operand: operand,
	}
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.current()
	switch tok.Type {
	case lexer.TokHex:
		p.advance()
		return &ast.HexLiteral{Span: tok.Span, Text: tok.Value}
	case lexer.TokOctal:
		p.advance()
		return &ast.OctalLiteral{Span: tok.Span, Text: tok.Value}
	case lexer.TokDecimal:
		p.advance()
		return &ast.DecimalLiteral{Span: tok.Span, Text: tok.Value}
	case lexer.TokIdent:
		p.advance()
		if p.peek() == lexer.TokLParen {
			return p.parseCall(tok)
		}
		return &ast.VariableExpr{Span: tok.Span, Name: tok.Value}
	case lexer.TokLParen:
		p.advance()
		inner := p.parseConditional()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen); !ok {
			return nil
		}
		return inner
	case lexer.TokEOF:
		p.addError("unexpected end of expression", &tok.Span)
		return nil
	default:
		p.addError(fmt.Sprintf("unexpected token '%s'", tok.Value), &tok.Span)
		return nil
	}
}

func (p *parser) parseCall(name lexer.Token) ast.Expr {
	p.advance() // consume '('

	var args []ast.Expr
	if p.peek() != lexer.TokRParen {
		for {
			arg := p.parseConditional()
			if arg == nil {
				return nil
			}
			args = append(args, arg)
			if p.peek() != lexer.TokComma {
				break
			}
			p.advance()
		}
	}

	closing, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}
	return &ast.CallExpr{
		Span: p.spanFromTo(name.Span, closing.Span),
		Name: name.Value,
		Args: args,
	}
}
