package similarity

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/google/cel-go/cel"
	celtypes "github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// Expressions holds CEL formulas for the scoring operations. An empty
// formula keeps the default behavior for that operation.
//
// Variables are doubles except field:
//
//	length_norm: field, num_terms
//	query_norm:  sum_of_squared_weights
//	tf:          freq
//	sloppy_freq: distance
//	idf:         doc_freq, num_docs
//	coord:       overlap, max_overlap
//
// The functions sqrt, log, min and max are available, e.g.
// `log(1.0 + (num_docs - doc_freq + 0.5) / (doc_freq + 0.5))`.
type Expressions struct {
	LengthNorm string `yaml:"length_norm" json:"length_norm"`
	QueryNorm  string `yaml:"query_norm" json:"query_norm"`
	TF         string `yaml:"tf" json:"tf"`
	SloppyFreq string `yaml:"sloppy_freq" json:"sloppy_freq"`
	IDF        string `yaml:"idf" json:"idf"`
	Coord      string `yaml:"coord" json:"coord"`
}

// Expression is a similarity whose formulas are CEL programs. Norms use the
// same small-float codec as Default. A formula that fails at evaluation
// time falls back to the default formula for that call.
type Expression struct {
	normTable [256]float32
	logger    *slog.Logger
	closed    atomic.Bool

	lengthNorm cel.Program
	queryNorm  cel.Program
	tf         cel.Program
	sloppyFreq cel.Program
	idf        cel.Program
	coord      cel.Program
}

// NewExpression compiles exprs into an Expression similarity. A nil logger
// uses slog.Default().
func NewExpression(exprs Expressions, logger *slog.Logger) (*Expression, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base, err := cel.NewEnv(mathFunctions()...)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	s := &Expression{
		normTable: newNormTable(),
		logger:    logger,
	}

	compiled := []struct {
		name   string
		source string
		vars   []cel.EnvOption
		target *cel.Program
	}{
		{"length_norm", exprs.LengthNorm, []cel.EnvOption{
			cel.Variable("field", cel.StringType),
			cel.Variable("num_terms", cel.DoubleType),
		}, &s.lengthNorm},
		{"query_norm", exprs.QueryNorm, []cel.EnvOption{
			cel.Variable("sum_of_squared_weights", cel.DoubleType),
		}, &s.queryNorm},
		{"tf", exprs.TF, []cel.EnvOption{
			cel.Variable("freq", cel.DoubleType),
		}, &s.tf},
		{"sloppy_freq", exprs.SloppyFreq, []cel.EnvOption{
			cel.Variable("distance", cel.DoubleType),
		}, &s.sloppyFreq},
		{"idf", exprs.IDF, []cel.EnvOption{
			cel.Variable("doc_freq", cel.DoubleType),
			cel.Variable("num_docs", cel.DoubleType),
		}, &s.idf},
		{"coord", exprs.Coord, []cel.EnvOption{
			cel.Variable("overlap", cel.DoubleType),
			cel.Variable("max_overlap", cel.DoubleType),
		}, &s.coord},
	}

	for _, c := range compiled {
		if c.source == "" {
			continue
		}
		prg, err := compileNumeric(base, c.source, c.vars...)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidExpression, c.name, err)
		}
		*c.target = prg
	}

	return s, nil
}

func compileNumeric(base *cel.Env, source string, vars ...cel.EnvOption) (cel.Program, error) {
	env, err := base.Extend(vars...)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.DoubleType) && !out.IsExactType(cel.IntType) {
		return nil, fmt.Errorf("expression must return a number, got %s", out)
	}

	return env.Program(ast)
}

// mathFunctions declares the numeric helpers usable in formulas.
func mathFunctions() []cel.EnvOption {
	unary := func(name string, fn func(float64) float64) cel.EnvOption {
		return cel.Function(name,
			cel.Overload(name+"_double", []*cel.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					d, ok := v.(celtypes.Double)
					if !ok {
						return celtypes.MaybeNoSuchOverloadErr(v)
					}
					return celtypes.Double(fn(float64(d)))
				})))
	}
	binary := func(name string, fn func(float64, float64) float64) cel.EnvOption {
		return cel.Function(name,
			cel.Overload(name+"_double_double", []*cel.Type{cel.DoubleType, cel.DoubleType}, cel.DoubleType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					a, ok := lhs.(celtypes.Double)
					if !ok {
						return celtypes.MaybeNoSuchOverloadErr(lhs)
					}
					b, ok := rhs.(celtypes.Double)
					if !ok {
						return celtypes.MaybeNoSuchOverloadErr(rhs)
					}
					return celtypes.Double(fn(float64(a), float64(b)))
				})))
	}

	return []cel.EnvOption{
		unary("sqrt", math.Sqrt),
		unary("log", math.Log),
		binary("min", math.Min),
		binary("max", math.Max),
	}
}

// eval runs prg and reports whether it produced a finite number.
func (s *Expression) eval(name string, prg cel.Program, vars map[string]any) (float32, bool) {
	if prg == nil {
		return 0, false
	}
	out, _, err := prg.Eval(vars)
	if err != nil {
		s.logger.Debug("scoring expression failed, using default formula", "operation", name, "error", err)
		return 0, false
	}
	var v float64
	switch n := out.Value().(type) {
	case float64:
		v = n
	case int64:
		v = float64(n)
	default:
		s.logger.Debug("scoring expression returned a non-number", "operation", name, "type", fmt.Sprintf("%T", out.Value()))
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		s.logger.Debug("scoring expression returned a non-finite value, using default formula", "operation", name, "value", v)
		return 0, false
	}
	return float32(v), true
}

// LengthNorm evaluates the length_norm formula.
func (s *Expression) LengthNorm(field string, numTerms int) float32 {
	if v, ok := s.eval("length_norm", s.lengthNorm, map[string]any{
		"field":     field,
		"num_terms": float64(numTerms),
	}); ok {
		return v
	}
	return defaultLengthNorm(numTerms)
}

// QueryNorm evaluates the query_norm formula.
func (s *Expression) QueryNorm(sumOfSquaredWeights float32) float32 {
	if v, ok := s.eval("query_norm", s.queryNorm, map[string]any{
		"sum_of_squared_weights": float64(sumOfSquaredWeights),
	}); ok {
		return v
	}
	return defaultQueryNorm(float64(sumOfSquaredWeights))
}

// TF evaluates the tf formula.
func (s *Expression) TF(freq float32) float32 {
	if v, ok := s.eval("tf", s.tf, map[string]any{
		"freq": float64(freq),
	}); ok {
		return v
	}
	return defaultTF(float64(freq))
}

// SloppyFreq evaluates the sloppy_freq formula.
func (s *Expression) SloppyFreq(distance int) float32 {
	if v, ok := s.eval("sloppy_freq", s.sloppyFreq, map[string]any{
		"distance": float64(distance),
	}); ok {
		return v
	}
	return defaultSloppyFreq(distance)
}

// IDF evaluates the idf formula.
func (s *Expression) IDF(docFreq, numDocs int) float32 {
	if v, ok := s.eval("idf", s.idf, map[string]any{
		"doc_freq": float64(docFreq),
		"num_docs": float64(numDocs),
	}); ok {
		return v
	}
	return defaultIDF(docFreq, numDocs)
}

// Coord evaluates the coord formula.
func (s *Expression) Coord(overlap, maxOverlap int) float32 {
	if v, ok := s.eval("coord", s.coord, map[string]any{
		"overlap":     float64(overlap),
		"max_overlap": float64(maxOverlap),
	}); ok {
		return v
	}
	return defaultCoord(overlap, maxOverlap)
}

// DecodeNorm looks b up in the norm table.
func (s *Expression) DecodeNorm(b byte) float32 {
	return s.normTable[b]
}

// EncodeNorm quantizes f with the small-float codec.
func (s *Expression) EncodeNorm(f float32) byte {
	return EncodeSmallFloat(f)
}

// NormTable returns a copy of the norm table.
func (s *Expression) NormTable() [256]float32 {
	return s.normTable
}

// Close drops the compiled programs.
func (s *Expression) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	s.lengthNorm = nil
	s.queryNorm = nil
	s.tf = nil
	s.sloppyFreq = nil
	s.idf = nil
	s.coord = nil
	return nil
}
