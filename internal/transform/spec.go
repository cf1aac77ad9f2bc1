// Package transform applies ordered plans of normalize, encode and filter
// steps to a dataset.
package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataloom-cli/internal/dataerr"
)

// Normalization methods.
const (
	ZScore = "z-score"
	MinMax = "min-max"
)

// Encoding methods.
const (
	OneHot = "one-hot"
	Label  = "label"
)

// Spec is one plan step. The set of implementations is closed: Normalize,
// Encode and Filter.
type Spec interface {
	Type() string
	String() string
	spec()
}

// Plan is an ordered list of steps applied left to right.
type Plan []Spec

// Normalize rescales a numeric column in place.
type Normalize struct {
	Column string `validate:"required"`
	Method string `validate:"required,oneof=z-score min-max"`
}

// Encode turns a categorical column into numbers.
type Encode struct {
	Column string `validate:"required"`
	Method string `validate:"required,oneof=one-hot label"`
}

// Filter keeps the rows for which Predicate evaluates to true.
type Filter struct {
	Predicate string `validate:"required"`
}

func (Normalize) Type() string { return "normalize" }
func (Encode) Type() string    { return "encode" }
func (Filter) Type() string    { return "filter" }

func (n Normalize) String() string { return fmt.Sprintf("normalize(%s, %s)", n.Column, n.Method) }
func (e Encode) String() string    { return fmt.Sprintf("encode(%s, %s)", e.Column, e.Method) }
func (f Filter) String() string    { return fmt.Sprintf("filter(%s)", f.Predicate) }

func (Normalize) spec() {}
func (Encode) spec()    {}
func (Filter) spec()    {}

var validate = validator.New()

// NewNormalize validates and builds a normalize step. An empty method means
// z-score.
func NewNormalize(column, method string) (Normalize, error) {
	if method == "" {
		method = ZScore
	}
	n := Normalize{Column: column, Method: strings.ToLower(method)}
	if err := check(n, "normalize", column); err != nil {
		return Normalize{}, err
	}
	return n, nil
}

// NewEncode validates and builds an encode step. An empty method means
// one-hot.
func NewEncode(column, method string) (Encode, error) {
	if method == "" {
		method = OneHot
	}
	e := Encode{Column: column, Method: strings.ToLower(method)}
	if err := check(e, "encode", column); err != nil {
		return Encode{}, err
	}
	return e, nil
}

// NewFilter validates the predicate syntax. Identifiers are checked against
// the dataset when the step runs.
func NewFilter(predicate string) (Filter, error) {
	f := Filter{Predicate: strings.TrimSpace(predicate)}
	if err := check(f, "filter", predicate); err != nil {
		return Filter{}, err
	}
	if _, err := expr.Compile(f.Predicate); err != nil {
		return Filter{}, dataerr.Transform("filter", f.Predicate, err)
	}
	return f, nil
}

func check(s any, op, subject string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dataerr.Transform(op, subject, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return dataerr.Transform(op, subject, errors.New(strings.Join(msgs, "; ")))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// step is the on-disk shape of a plan entry.
type step struct {
	Type   string         `json:"type" yaml:"type"`
	Params map[string]any `json:"params" yaml:"params"`
}

// ParsePlan decodes a JSON or YAML list of {type, params} entries.
func ParsePlan(data []byte) (Plan, error) {
	var steps []step
	var err error
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &steps)
	} else {
		err = yaml.Unmarshal(data, &steps)
	}
	if err != nil {
		return nil, dataerr.Transform("parse plan", "", err)
	}
	plan := make(Plan, 0, len(steps))
	for i, st := range steps {
		s, err := st.build()
		if err != nil {
			return nil, fmt.Errorf("plan step %d: %w", i, err)
		}
		plan = append(plan, s)
	}
	return plan, nil
}

// LoadPlan reads a plan file.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dataerr.NotFound("load plan", path, err)
	}
	return ParsePlan(data)
}

func (st step) build() (Spec, error) {
	param := func(key string) string {
		v, ok := st.Params[key]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	switch strings.ToLower(strings.TrimSpace(st.Type)) {
	case "normalize":
		return NewNormalize(param("column"), param("method"))
	case "encode":
		return NewEncode(param("column"), param("method"))
	case "filter":
		if p := param("predicate"); p != "" {
			return NewFilter(p)
		}
		return NewFilter(param("condition"))
	default:
		return nil, dataerr.Newf(dataerr.ErrInvalidTransform, "parse plan", st.Type, "unknown transform type")
	}
}
