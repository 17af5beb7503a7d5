package ontology

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/mangle/ast"
)

// valueToTerm maps Go values onto Mangle constants. Strings with a
// leading "/" are name constants (graph node and enum identifiers);
// everything else keeps its literal type.
func valueToTerm(value any) (ast.BaseTerm, error) {
	switch v := value.(type) {
	case ast.BaseTerm:
		return v, nil
	case string:
		if len(v) > 0 && v[0] == '/' {
			name, err := ast.Name(v)
			if err != nil {
				return nil, err
			}
			return name, nil
		}
		return ast.String(v), nil
	case int:
		return ast.Number(int64(v)), nil
	case int64:
		return ast.Number(v), nil
	case float64:
		return ast.Float64(v), nil
	case bool:
		if v {
			return ast.TrueConstant, nil
		}
		return ast.FalseConstant, nil
	default:
		return nil, fmt.Errorf("unsupported fact argument type %T", value)
	}
}

func termToValue(term ast.BaseTerm) any {
	c, ok := term.(ast.Constant)
	if !ok {
		return term.String()
	}
	switch c.Type {
	case ast.StringType, ast.NameType, ast.BytesType:
		return c.Symbol
	case ast.NumberType:
		return c.NumValue
	case ast.Float64Type:
		return math.Float64frombits(uint64(c.NumValue))
	default:
		return c.String()
	}
}

// TermKind discriminates triple object values for constraint checks.
type TermKind int

const (
	KindName TermKind = iota
	KindString
	KindNumber
)

// Term is a triple object in a form the SHACL layer can test directly.
type Term struct {
	Kind TermKind
	Str  string // symbol for names/strings, formatted value for numbers
	Num  float64
}

func (k TermKind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindString:
		return "string"
	default:
		return "number"
	}
}

func constantToTerm(c ast.Constant) Term {
	switch c.Type {
	case ast.NameType:
		return Term{Kind: KindName, Str: c.Symbol}
	case ast.StringType, ast.BytesType:
		return Term{Kind: KindString, Str: c.Symbol}
	case ast.NumberType:
		return Term{Kind: KindNumber, Str: strconv.FormatInt(c.NumValue, 10), Num: float64(c.NumValue)}
	case ast.Float64Type:
		f := math.Float64frombits(uint64(c.NumValue))
		return Term{Kind: KindNumber, Str: strconv.FormatFloat(f, 'g', -1, 64), Num: f}
	default:
		return Term{Kind: KindString, Str: c.String()}
	}
}
