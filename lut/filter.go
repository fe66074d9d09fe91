//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package lut

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
)

// FilterEnv is the environment filter expressions are evaluated in.
type FilterEnv struct {
	Name string
	Type string
	Size int
}

// Filter selects the LUT cells to collect, for example:
//
//	Size < 6 && Name startsWith "u_alu"
type Filter struct {
	source  string
	program *vm.Program
}

// NewFilter compiles the filter expression.
func NewFilter(source string) (*Filter, error) {
	program, err := expr.Compile(source, expr.Env(FilterEnv{}),
		expr.AsBool())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid filter %q", source)
	}
	return &Filter{
		source:  source,
		program: program,
	}, nil
}

func (f *Filter) String() string {
	return f.source
}

// Match tests if the filter accepts the cell.
func (f *Filter) Match(name, typ string, size int) (bool, error) {
	out, err := expr.Run(f.program, FilterEnv{
		Name: name,
		Type: typ,
		Size: size,
	})
	if err != nil {
		return false, errors.Wrapf(err, "filter %q", f.source)
	}
	match, ok := out.(bool)
	if !ok {
		return false, errors.Errorf("filter %q: non-boolean result %v",
			f.source, out)
	}
	return match, nil
}
