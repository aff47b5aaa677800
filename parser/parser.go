// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"
	"strings"

	exprpb "cel.dev/expr"
	"github.com/google/cel-go/common"
	"github.com/google/cel-go/common/ast"
	celparser "github.com/google/cel-go/parser"
	"google.golang.org/protobuf/proto"

	"github.com/stacklok/toolhive-cel/expr"
)

// Default limits.
const (
	DefaultMaxRecursionDepth = 250
	DefaultMaxCodePoints     = 100_000
)

// Issue is one syntax error. Line is 1-based, Col is 0-based.
type Issue struct {
	Line    int
	Col     int
	Message string
}

// Error reports the syntax errors found in Source.
type Error struct {
	Source string
	Issues []Issue
}

// Error implements error.
func (e *Error) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = fmt.Sprintf("%d:%d: %s", issue.Line, issue.Col+1, issue.Message)
	}
	return "syntax error: " + strings.Join(msgs, "; ")
}

type options struct {
	optionalSyntax    bool
	maxRecursionDepth int
	maxCodePoints     int
}

// Option configures a Parser.
type Option func(*options)

// WithOptionalSyntax enables a.?b, a[?k], [?x] and {?k: v}.
func WithOptionalSyntax(enabled bool) Option {
	return func(o *options) { o.optionalSyntax = enabled }
}

// WithMaxRecursionDepth bounds the nesting depth of the grammar.
func WithMaxRecursionDepth(depth int) Option {
	return func(o *options) { o.maxRecursionDepth = depth }
}

// WithMaxCodePoints bounds the size of an expression in code points.
func WithMaxCodePoints(limit int) Option {
	return func(o *options) { o.maxCodePoints = limit }
}

// Parser turns expression text into an expanded expression tree. It is safe
// for concurrent use.
type Parser struct {
	p *celparser.Parser
}

// New creates a parser. Optional syntax is enabled by default.
func New(opts ...Option) (*Parser, error) {
	o := options{
		optionalSyntax:    true,
		maxRecursionDepth: DefaultMaxRecursionDepth,
		maxCodePoints:     DefaultMaxCodePoints,
	}
	for _, opt := range opts {
		opt(&o)
	}
	// Macros are expanded by expr.Builder, so the grammar runs without them.
	p, err := celparser.NewParser(
		celparser.EnableOptionalSyntax(o.optionalSyntax),
		celparser.MaxRecursionDepth(o.maxRecursionDepth),
		celparser.ExpressionSizeCodePointLimit(o.maxCodePoints),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}
	return &Parser{p: p}, nil
}

var defaultParser = func() *Parser {
	p, err := New()
	if err != nil {
		panic(err)
	}
	return p
}()

// Parse parses text with the default parser.
func Parse(text string) (*expr.Expr, *expr.SourceInfo, error) {
	return defaultParser.Parse(text)
}

// Parse parses text. Syntax errors are returned as *Error.
func (p *Parser) Parse(text string) (*expr.Expr, *expr.SourceInfo, error) {
	parsed, errs := p.p.Parse(common.NewTextSource(text))
	if errs != nil && len(errs.GetErrors()) > 0 {
		return nil, nil, newError(text, errs)
	}
	pe, err := ast.ExprToProto(parsed.Expr())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert expression: %w", err)
	}
	info, err := ast.SourceInfoToProto(parsed.SourceInfo())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert source info: %w", err)
	}
	e, src := &exprpb.Expr{}, &exprpb.SourceInfo{}
	if err := convertProto(pe, e); err != nil {
		return nil, nil, fmt.Errorf("failed to convert expression: %w", err)
	}
	if err := convertProto(info, src); err != nil {
		return nil, nil, fmt.Errorf("failed to convert source info: %w", err)
	}
	return expr.FromProto(e, src)
}

// convertProto copies in into out through the wire format. cel-go emits the
// googleapis v1alpha1 messages, which share their encoding with cel.dev/expr.
func convertProto(in, out proto.Message) error {
	data, err := proto.Marshal(in)
	if err != nil {
		return err
	}
	return proto.Unmarshal(data, out)
}

func newError(text string, errs *common.Errors) *Error {
	out := &Error{Source: text}
	for _, e := range errs.GetErrors() {
		out.Issues = append(out.Issues, Issue{
			Line:    e.Location.Line(),
			Col:     e.Location.Column(),
			Message: e.Message,
		})
	}
	return out
}
