// Package exprlist reads the line-oriented "name = expression" Boolean
// network format, the second of the two documented input formats.
// It shares internal/parser/boolexpr's expression grammar with the .bnet
// front-end; only the per-line separator differs ("=" instead of ",").
package exprlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sdlab/succd/internal/parser/boolexpr"
	"github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
)

// Parse reads a "name = expression" document from r, one rule per line.
// Blank lines and lines starting with '#' or "//" are ignored.
func Parse(r io.Reader) (*model.BooleanNetwork, error) {
	vs := model.NewVariableSet()
	type rawRule struct {
		name string
		expr string
	}
	var rules []rawRule

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			return nil, errors.MalformedInput(fmt.Sprintf("exprlist line %d: expected \"name = expression\", got %q", lineNo, line))
		}
		name := strings.TrimSpace(line[:idx])
		expr := strings.TrimSpace(line[idx+1:])
		if name == "" || expr == "" {
			return nil, errors.MalformedInput(fmt.Sprintf("exprlist line %d: empty name or expression", lineNo))
		}
		vs.Intern(name)
		rules = append(rules, rawRule{name: name, expr: expr})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeMalformedInput, "reading exprlist input", err, false)
	}
	if len(rules) == 0 {
		return nil, errors.MalformedInput("exprlist input declares no variables")
	}

	funcs := make([]model.Expr, vs.Len())
	seen := make([]bool, vs.Len())
	for _, rule := range rules {
		id, _ := vs.Lookup(rule.name)
		e, err := boolexpr.Parse(rule.expr, vs)
		if err != nil {
			return nil, err
		}
		funcs[id] = e
		seen[id] = true
	}
	for id, ok := range seen {
		if !ok {
			return nil, errors.MalformedInput(fmt.Sprintf("variable %q is referenced but never assigned an update function", vs.Name(id)))
		}
	}
	return model.NewBooleanNetwork(vs, funcs), nil
}

// ParseString is a convenience wrapper around Parse for in-memory input.
func ParseString(s string) (*model.BooleanNetwork, error) {
	return Parse(strings.NewReader(s))
}
