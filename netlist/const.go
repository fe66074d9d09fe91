//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package netlist

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// State defines the value of a constant bit.
type State byte

// Constant bit states.
const (
	S0 State = iota
	S1
	Sx
	Sz
)

func (s State) String() string {
	switch s {
	case S0:
		return "0"
	case S1:
		return "1"
	case Sz:
		return "z"
	default:
		return "x"
	}
}

// Const is a cell parameter value. It is either a bit vector, stored
// LSB first, or a text string.
type Const struct {
	Bits   []State
	Text   string
	IsText bool
}

// NewConst creates a width bits wide constant from the value v.
func NewConst(v uint64, width int) Const {
	bits := make([]State, width)
	for i := 0; i < width; i++ {
		if i < 64 && v&(1<<i) != 0 {
			bits[i] = S1
		}
	}
	return Const{
		Bits: bits,
	}
}

// NewTextConst creates a string constant.
func NewTextConst(text string) Const {
	return Const{
		Text:   text,
		IsText: true,
	}
}

// Width returns the constant width in bits.
func (c Const) Width() int {
	return len(c.Bits)
}

// Uint64 returns the lowest 64 bits of the constant as an integer.
// Undefined bits read as 0.
func (c Const) Uint64() uint64 {
	var v uint64
	for i, s := range c.Bits {
		if i >= 64 {
			break
		}
		if s == S1 {
			v |= 1 << i
		}
	}
	return v
}

func (c Const) String() string {
	if c.IsText {
		return c.Text
	}
	var sb strings.Builder
	for i := len(c.Bits) - 1; i >= 0; i-- {
		sb.WriteString(c.Bits[i].String())
	}
	return sb.String()
}

// ParseConst parses an MSB first binary string into a constant.
func ParseConst(s string) (Const, error) {
	bits := make([]State, len(s))
	for i := 0; i < len(s); i++ {
		var st State
		switch s[len(s)-1-i] {
		case '0':
			st = S0
		case '1':
			st = S1
		case 'x', 'X':
			st = Sx
		case 'z', 'Z':
			st = Sz
		default:
			return Const{}, errors.Errorf("invalid constant %q", s)
		}
		bits[i] = st
	}
	return Const{
		Bits: bits,
	}, nil
}

func isBinary(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0', '1', 'x', 'z':
		default:
			return false
		}
	}
	return true
}

// MarshalJSON encodes the constant the way Yosys write_json does:
// bit vectors as MSB first binary strings, and text values that
// would read back as bit vectors with a trailing space.
func (c Const) MarshalJSON() ([]byte, error) {
	if c.IsText {
		text := c.Text
		if isBinary(text) || strings.HasSuffix(text, " ") {
			text += " "
		}
		return []byte(strconv.Quote(text)), nil
	}
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON decodes a Yosys JSON parameter value.
func (c *Const) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty parameter value")
	}
	if data[0] != '"' {
		v, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid parameter value")
		}
		*c = NewConst(uint64(v), 32)
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrap(err, "invalid parameter value")
	}
	if isBinary(s) {
		*c, err = ParseConst(s)
		return err
	}
	if strings.HasSuffix(s, " ") {
		s = s[:len(s)-1]
	}
	*c = NewTextConst(s)
	return nil
}
