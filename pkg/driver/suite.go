package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"aql/interpreter-go/pkg/ast"
	"aql/interpreter-go/pkg/runtime"

	"gopkg.in/yaml.v3"
)

// Suite is a parsed query suite: a model, shared bindings and queries with
// their expected outcomes.
type Suite struct {
	Path        string
	Name        string
	ModelPath   string
	Concurrency int
	Bindings    map[string]any
	Queries     []*Query
}

// Query is one expression evaluated against the suite model.
type Query struct {
	Name       string
	Expression ast.Expression
	// Bindings override the suite bindings for this query only.
	Bindings map[string]any
	Expect   Expectation
}

// Expectation is either a rendered result or an error kind.
type Expectation struct {
	Result *string
	Error  runtime.ErrorKind
}

// String renders the expectation in the same form as an outcome.
func (e Expectation) String() string {
	if e.Result != nil {
		return *e.Result
	}
	return "error: " + string(e.Error)
}

type suiteFile struct {
	Name        string         `yaml:"name"`
	Model       string         `yaml:"model"`
	Concurrency int            `yaml:"concurrency"`
	Bindings    map[string]any `yaml:"bindings"`
	Queries     []queryFile    `yaml:"queries"`
}

type queryFile struct {
	Name       string         `yaml:"name"`
	Expression map[string]any `yaml:"expression"`
	Bindings   map[string]any `yaml:"bindings"`
	Expect     expectFile     `yaml:"expect"`
}

type expectFile struct {
	Result *string `yaml:"result"`
	Error  string  `yaml:"error"`
}

// ValidationError aggregates suite validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "suite: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("suite validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadSuite parses and validates a suite file. The model path is resolved
// relative to the suite's directory.
func LoadSuite(path string) (*Suite, error) {
	if path == "" {
		return nil, fmt.Errorf("suite: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("suite: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("suite: open %s: %w", absPath, err)
	}
	defer file.Close()
	suite, err := DecodeSuite(file, absPath)
	if err != nil {
		return nil, err
	}
	return suite, nil
}

// DecodeSuite parses a suite document; path locates the suite for
// resolving the model file and may be empty.
func DecodeSuite(r io.Reader, path string) (*Suite, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw suiteFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("suite: %s is empty", path)
		}
		return nil, fmt.Errorf("suite: parse %s: %w", path, err)
	}
	return raw.toSuite(path)
}

func (raw *suiteFile) toSuite(path string) (*Suite, error) {
	var errs ValidationError
	suite := &Suite{
		Path:        path,
		Name:        raw.Name,
		Concurrency: raw.Concurrency,
		Bindings:    raw.Bindings,
	}
	if suite.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if raw.Model == "" {
		errs.Issues = append(errs.Issues, "model must be provided")
	} else if filepath.IsAbs(raw.Model) || path == "" {
		suite.ModelPath = raw.Model
	} else {
		suite.ModelPath = filepath.Join(filepath.Dir(path), raw.Model)
	}
	if raw.Concurrency < 0 {
		errs.Issues = append(errs.Issues, "concurrency must not be negative")
	}
	if len(raw.Queries) == 0 {
		errs.Issues = append(errs.Issues, "queries must not be empty")
	}

	seen := make(map[string]bool, len(raw.Queries))
	for idx, q := range raw.Queries {
		label := q.Name
		if label == "" {
			label = fmt.Sprintf("queries[%d]", idx)
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s must have a name", label))
		} else if seen[label] {
			errs.Issues = append(errs.Issues, fmt.Sprintf("query %q is declared twice", label))
		}
		seen[label] = true

		query := &Query{Name: q.Name, Bindings: q.Bindings}
		if q.Expression == nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s missing expression", label))
		} else if expr, err := ast.Decode(q.Expression); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s expression: %v", label, err))
		} else {
			query.Expression = expr
		}
		expect, issue := q.Expect.toExpectation()
		if issue != "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("%s expect: %s", label, issue))
		}
		query.Expect = expect
		suite.Queries = append(suite.Queries, query)
	}

	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return suite, nil
}

func (e expectFile) toExpectation() (Expectation, string) {
	switch {
	case e.Result != nil && e.Error != "":
		return Expectation{}, "result and error are mutually exclusive"
	case e.Result != nil:
		return Expectation{Result: e.Result}, ""
	case e.Error != "":
		kind := runtime.ErrorKind(e.Error)
		switch kind {
		case runtime.KindVariableNotFound, runtime.KindTypeError, runtime.KindInvalidOperation:
			return Expectation{Error: kind}, ""
		default:
			return Expectation{}, fmt.Sprintf("unsupported error kind %q", e.Error)
		}
	default:
		return Expectation{}, "one of result or error must be provided"
	}
}
