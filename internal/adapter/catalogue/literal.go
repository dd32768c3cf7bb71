package catalogue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// literalPattern matches `export const <name>: T[] = [` up to and including
// the opening bracket. The end of the array is found by scanning brackets.
func literalPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`export\s+const\s+` + regexp.QuoteMeta(name) + `\s*(?::[^=]+)?=\s*\[`)
}

var (
	artistsPattern  = literalPattern("artists")
	releasesPattern = literalPattern("releases")
)

// extractLiteral returns the source of the array literal bound to the
// constant matched by pattern
func extractLiteral(src []byte, pattern *regexp.Regexp) (string, error) {
	loc := pattern.FindIndex(src)
	if loc == nil {
		return "", fmt.Errorf("%w: array literal not found", domain.ErrCatalogueParse)
	}
	start := loc[1] - 1
	end, err := closingBracket(src, start)
	if err != nil {
		return "", err
	}
	return string(src[start:end]), nil
}

// closingBracket returns the offset just past the bracket that closes the one
// at start. Brackets inside strings and comments are ignored.
func closingBracket(src []byte, start int) (int, error) {
	depth := 0
	for i := start; i < len(src); i++ {
		switch c := src[i]; c {
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		case '"', '\'', '`':
			i = skipQuoted(src, i, c)
		case '/':
			if i+1 >= len(src) {
				break
			}
			switch src[i+1] {
			case '/':
				for i < len(src) && src[i] != '\n' {
					i++
				}
			case '*':
				end := bytes.Index(src[i+2:], []byte("*/"))
				if end < 0 {
					return 0, fmt.Errorf("%w: unterminated comment", domain.ErrCatalogueParse)
				}
				i += end + 3
			}
		}
	}
	return 0, fmt.Errorf("%w: array literal is not closed", domain.ErrCatalogueParse)
}

// skipQuoted returns the offset of the quote closing the string at i
func skipQuoted(src []byte, i int, quote byte) int {
	for i++; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return i
}

// decodeLiteral parses a JavaScript array literal without executing it and
// decodes the value into out
func decodeLiteral(literal string, out any) error {
	program, err := parser.ParseFile(nil, "", "("+literal+")", 0)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCatalogueParse, err)
	}
	if len(program.Body) != 1 {
		return fmt.Errorf("%w: expected a single expression", domain.ErrCatalogueParse)
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return fmt.Errorf("%w: expected an expression statement", domain.ErrCatalogueParse)
	}

	value, err := literalValue(stmt.Expression)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCatalogueParse, err)
	}

	// Round-trip through JSON so field names and types follow the struct tags
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCatalogueParse, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCatalogueParse, err)
	}
	return nil
}

// literalValue converts a constant expression into plain Go values. Anything
// that would need evaluation is rejected.
func literalValue(node ast.Expression) (any, error) {
	switch n := node.(type) {
	case *ast.StringLiteral:
		return n.Value.String(), nil
	case *ast.TemplateLiteral:
		if len(n.Expressions) > 0 {
			return nil, fmt.Errorf("template substitutions are not supported")
		}
		var sb strings.Builder
		for _, el := range n.Elements {
			sb.WriteString(el.Parsed.String())
		}
		return sb.String(), nil
	case *ast.NumberLiteral:
		return n.Value, nil
	case *ast.BooleanLiteral:
		return n.Value, nil
	case *ast.NullLiteral:
		return nil, nil
	case *ast.UnaryExpression:
		if num, ok := n.Operand.(*ast.NumberLiteral); ok && n.Operator.String() == "-" {
			switch v := num.Value.(type) {
			case int64:
				return -v, nil
			case float64:
				return -v, nil
			}
		}
		return nil, fmt.Errorf("unsupported unary expression")
	case *ast.ArrayLiteral:
		out := make([]any, 0, len(n.Value))
		for _, el := range n.Value {
			if el == nil {
				out = append(out, nil)
				continue
			}
			v, err := literalValue(el)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case *ast.ObjectLiteral:
		out := make(map[string]any, len(n.Value))
		for _, prop := range n.Value {
			keyed, ok := prop.(*ast.PropertyKeyed)
			if !ok {
				return nil, fmt.Errorf("unsupported property %T", prop)
			}
			var key string
			switch k := keyed.Key.(type) {
			case *ast.Identifier:
				key = k.Name.String()
			case *ast.StringLiteral:
				key = k.Value.String()
			case *ast.NumberLiteral:
				key = fmt.Sprint(k.Value)
			default:
				return nil, fmt.Errorf("unsupported property key %T", keyed.Key)
			}
			v, err := literalValue(keyed.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported expression %T", node)
	}
}

func readArtists(src []byte) ([]domain.Artist, error) {
	literal, err := extractLiteral(src, artistsPattern)
	if err != nil {
		return nil, err
	}
	artists := []domain.Artist{}
	if err := decodeLiteral(literal, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}

func readReleases(src []byte) ([]domain.Release, error) {
	literal, err := extractLiteral(src, releasesPattern)
	if err != nil {
		return nil, err
	}
	releases := []domain.Release{}
	if err := decodeLiteral(literal, &releases); err != nil {
		return nil, err
	}
	return releases, nil
}
