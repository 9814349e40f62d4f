package expression

import (
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

// File is the environment a filter expression is evaluated against.
type File struct {
	Name     string
	Path     string
	Dir      string
	Ext      string
	Size     int64
	ModTime  time.Time
	AgeHours float64
}

type CompiledExpression struct {
	Text    string
	Program *vm.Program
}

// Compile compiles filter expressions against the File environment.
// Every expression must evaluate to a boolean.
func Compile(expressions []string) ([]CompiledExpression, error) {
	compiled := make([]CompiledExpression, 0, len(expressions))

	for _, text := range expressions {
		program, err := expr.Compile(text, expr.Env(&File{}), expr.AsBool())
		if err != nil {
			return nil, errors.Wrapf(err, "compile expression: %q", text)
		}

		compiled = append(compiled, CompiledExpression{Text: text, Program: program})
	}

	return compiled, nil
}
