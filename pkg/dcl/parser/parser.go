package parser

import (
	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// ParseRule parses exactly one DCL rule from text.
// Trailing content after the rule is a syntax error.
func ParseRule(text string) (*ast.Rule, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	rule, err := p.parseRule()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokenEOF {
		return nil, errorAt(p.tok.loc, "unexpected input after rule: %s", p.tok.describe())
	}
	return rule, nil
}

// ParseFile parses zero or more whitespace/comment-separated rules.
// An empty (or comment-only) input yields an empty slice, not an error.
func ParseFile(text string) ([]*ast.Rule, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	rules := make([]*ast.Rule, 0)
	for p.tok.kind != tokenEOF {
		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// parser is a recursive-descent parser with one token of lookahead.
type parser struct {
	lex *lexer
	tok token
}

func newParser(text string) (*parser, error) {
	p := &parser{lex: newLexer(text)}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

// next advances the lookahead token.
func (p *parser) next() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// expect consumes a token of the given kind or fails with a located error.
func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.tok.kind != kind {
		return token{}, errorAt(p.tok.loc, "expected %s, found %s", what, p.tok.describe())
	}
	tok := p.tok
	if err := p.next(); err != nil {
		return token{}, err
	}
	return tok, nil
}

// parseRule parses "WHEN condition THEN action".
// The parser never assigns rule IDs; loaders do.
func (p *parser) parseRule() (*ast.Rule, error) {
	start, err := p.expect(tokenWhen, `"WHEN"`)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenThen, `"THEN"`); err != nil {
		return nil, err
	}
	action, err := p.parseAction()
	if err != nil {
		return nil, err
	}
	return &ast.Rule{Condition: cond, Action: action, Location: start.loc}, nil
}

// parseCondition parses a full condition expression (lowest precedence: OR).
func (p *parser) parseCondition() (*ast.Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenOr {
		loc := p.tok.loc
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		node := ast.Or(left, right)
		node.Location = loc
		left = node
	}
	return left, nil
}

// parseAnd parses AND chains (binds tighter than OR).
func (p *parser) parseAnd() (*ast.Condition, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokenAnd {
		loc := p.tok.loc
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node := ast.And(left, right)
		node.Location = loc
		left = node
	}
	return left, nil
}

// parseUnary parses NOT prefixes (binds tighter than AND).
func (p *parser) parseUnary() (*ast.Condition, error) {
	if p.tok.kind == tokenNot {
		loc := p.tok.loc
		if err := p.next(); err != nil {
			return nil, err
		}
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node := ast.Not(child)
		node.Location = loc
		return node, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses a parenthesized group, a boolean literal condition,
// or a field/operator/value comparison.
func (p *parser) parsePrimary() (*ast.Condition, error) {
	switch p.tok.kind {
	case tokenLParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen, `")"`); err != nil {
			return nil, err
		}
		return cond, nil

	case tokenTrue:
		loc := p.tok.loc
		if err := p.next(); err != nil {
			return nil, err
		}
		node := ast.True()
		node.Location = loc
		return node, nil

	case tokenFalse:
		loc := p.tok.loc
		if err := p.next(); err != nil {
			return nil, err
		}
		node := ast.False()
		node.Location = loc
		return node, nil

	case tokenIdent:
		return p.parseComparison()

	default:
		return nil, errorAt(p.tok.loc, "expected condition, found %s", p.tok.describe())
	}
}

// parseComparison parses "field op value".
func (p *parser) parseComparison() (*ast.Condition, error) {
	fieldTok, err := p.expect(tokenIdent, "field path")
	if err != nil {
		return nil, err
	}
	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	node := ast.Comparison(ast.ParseFieldRef(fieldTok.text), op, value)
	node.Location = fieldTok.loc
	return node, nil
}

// parseOperator parses a comparison operator token.
func (p *parser) parseOperator() (ast.Operator, error) {
	var op ast.Operator
	switch p.tok.kind {
	case tokenEq:
		op = ast.OperatorEqual
	case tokenNeq:
		op = ast.OperatorNotEqual
	case tokenLt:
		op = ast.OperatorLessThan
	case tokenLte:
		op = ast.OperatorLessEqual
	case tokenGt:
		op = ast.OperatorGreaterThan
	case tokenGte:
		op = ast.OperatorGreaterEqual
	case tokenContains:
		op = ast.OperatorContains
	case tokenMatches:
		op = ast.OperatorMatches
	default:
		return "", errorAt(p.tok.loc, "expected comparison operator, found %s", p.tok.describe())
	}
	if err := p.next(); err != nil {
		return "", err
	}
	return op, nil
}

// parseValue parses a literal or a bare dotted path (late-bound FieldRef).
func (p *parser) parseValue() (*ast.Value, error) {
	tok := p.tok
	var v *ast.Value
	switch tok.kind {
	case tokenString:
		v = ast.StringValue(tok.text)
	case tokenNumber:
		v = ast.NumberValue(tok.num)
	case tokenTrue:
		v = ast.BoolValue(true)
	case tokenFalse:
		v = ast.BoolValue(false)
	case tokenNull:
		v = ast.NullValue()
	case tokenRegex:
		v = ast.RegexValue(tok.text)
	case tokenIdent:
		v = ast.FieldRefValue(ast.ParseFieldRef(tok.text))
	default:
		return nil, errorAt(tok.loc, "expected value, found %s", tok.describe())
	}
	v.Location = tok.loc
	if err := p.next(); err != nil {
		return nil, err
	}
	return v, nil
}

// parseAction parses an ASSERT, SET, or APPLY TEMPLATE clause.
func (p *parser) parseAction() (*ast.Action, error) {
	switch p.tok.kind {
	case tokenAssert:
		loc := p.tok.loc
		if err := p.next(); err != nil {
			return nil, err
		}
		fieldTok, err := p.expect(tokenIdent, "field path")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenIs, `"IS"`); err != nil {
			return nil, err
		}
		expected, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		action := ast.Assert(ast.ParseFieldRef(fieldTok.text), expected)
		action.Location = loc
		return action, nil

	case tokenSet:
		loc := p.tok.loc
		if err := p.next(); err != nil {
			return nil, err
		}
		fieldTok, err := p.expect(tokenIdent, "field path")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenTo, `"TO"`); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		action := ast.Set(ast.ParseFieldRef(fieldTok.text), value)
		action.Location = loc
		return action, nil

	case tokenApply:
		loc := p.tok.loc
		if err := p.next(); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenTemplate, `"TEMPLATE"`); err != nil {
			return nil, err
		}
		var path string
		switch p.tok.kind {
		case tokenString, tokenIdent:
			path = p.tok.text
		default:
			return nil, errorAt(p.tok.loc, "expected template path, found %s", p.tok.describe())
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		action := ast.ApplyTemplate(path)
		action.Location = loc
		return action, nil

	default:
		return nil, errorAt(p.tok.loc, "expected action (ASSERT, SET, or APPLY TEMPLATE), found %s", p.tok.describe())
	}
}
