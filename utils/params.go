//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package utils

import (
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// VerifyMode specifies how fusion plans are verified before they are
// committed.
type VerifyMode string

// Verification modes.
const (
	VerifyNone VerifyMode = "none"
	VerifySim  VerifyMode = "sim"
	VerifySAT  VerifyMode = "sat"
	VerifyAll  VerifyMode = "all"
)

// Sim tests if the mode includes exhaustive simulation.
func (m VerifyMode) Sim() bool {
	return m == VerifySim || m == VerifyAll
}

// SAT tests if the mode includes the SAT proof.
func (m VerifyMode) SAT() bool {
	return m == VerifySAT || m == VerifyAll
}

// Params specify stitcher parameters.
type Params struct {
	// LUTPrefix is the cell type prefix of the LUTs to collect. The
	// LUT size follows the prefix.
	LUTPrefix string `yaml:"lut_prefix"`

	// FusedType is the cell type of the dual-output six-input LUT.
	FusedType string `yaml:"fused_type"`

	// LayerThreshold specifies the number of LUTs above which the
	// candidate search is restricted to same and adjacent dependency
	// levels. Zero forces layered search and negative values force
	// global search.
	LayerThreshold int `yaml:"layer_threshold"`

	Verify      VerifyMode `yaml:"verify"`
	Filter      string     `yaml:"filter"`
	Diagnostics bool       `yaml:"diagnostics"`

	DumpOut io.WriteCloser     `yaml:"-"`
	Logger  logrus.FieldLogger `yaml:"-"`
	Timing  *Timing            `yaml:"-"`
	Metrics *Metrics           `yaml:"-"`
}

// NewParams returns new stitcher params object, initialized with the
// default values.
func NewParams() *Params {
	return &Params{
		LUTPrefix:      "GTP_LUT",
		FusedType:      "GTP_LUT6D",
		LayerThreshold: 2000,
		Verify:         VerifyNone,
	}
}

// LoadParams loads params from the YAML file. Values not set in the
// file keep their defaults.
func LoadParams(file string) (*Params, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	p := NewParams()
	if err := yaml.UnmarshalWithOptions(data, p,
		yaml.DisallowUnknownField()); err != nil {
		return nil, errors.Wrapf(err, "config %s", file)
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", file)
	}
	return p, nil
}

// Validate checks the params values.
func (p *Params) Validate() error {
	if len(p.LUTPrefix) == 0 {
		return errors.New("LUT prefix not set")
	}
	if len(p.FusedType) == 0 {
		return errors.New("fused LUT type not set")
	}
	switch p.Verify {
	case "":
		p.Verify = VerifyNone
	case VerifyNone, VerifySim, VerifySAT, VerifyAll:
	default:
		return errors.Errorf("invalid verify mode %q", p.Verify)
	}
	return nil
}

// Log returns the params logger. If the logger is not set, the
// function returns the logrus standard logger.
func (p *Params) Log() logrus.FieldLogger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}

// Close closes all open resources.
func (p *Params) Close() {
	if p.DumpOut != nil {
		p.DumpOut.Close()
		p.DumpOut = nil
	}
}
