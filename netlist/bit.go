//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package netlist

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Bit identifies one bit of a net. Non-negative values are net IDs
// and negative values are the constant bits.
type Bit int32

// Constant bits.
const (
	Bit0 Bit = -(iota + 1)
	Bit1
	BitX
	BitZ
)

// IsConst tests if the bit is a constant.
func (b Bit) IsConst() bool {
	return b < 0
}

// State returns the constant state of the bit. The function returns
// Sx for non-constant bits.
func (b Bit) State() State {
	switch b {
	case Bit0:
		return S0
	case Bit1:
		return S1
	case BitZ:
		return Sz
	default:
		return Sx
	}
}

func (b Bit) String() string {
	switch b {
	case Bit0:
		return "0"
	case Bit1:
		return "1"
	case BitX:
		return "x"
	case BitZ:
		return "z"
	default:
		return fmt.Sprintf("n%d", int32(b))
	}
}

// MarshalJSON encodes constants as strings and nets as numbers, as
// in the Yosys JSON netlist format.
func (b Bit) MarshalJSON() ([]byte, error) {
	if b.IsConst() {
		return []byte(strconv.Quote(b.State().String())), nil
	}
	return []byte(strconv.Itoa(int(b))), nil
}

// UnmarshalJSON decodes a Yosys JSON bit reference.
func (b *Bit) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return errors.Wrap(err, "invalid bit")
		}
		switch s {
		case "0":
			*b = Bit0
		case "1":
			*b = Bit1
		case "x":
			*b = BitX
		case "z":
			*b = BitZ
		default:
			return errors.Errorf("invalid constant bit %q", s)
		}
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 32)
	if err != nil {
		return errors.Wrap(err, "invalid bit")
	}
	if v < 0 {
		return errors.Errorf("invalid net ID %d", v)
	}
	*b = Bit(v)
	return nil
}

// ConstBit returns the constant bit for the state.
func ConstBit(s State) Bit {
	switch s {
	case S0:
		return Bit0
	case S1:
		return Bit1
	case Sz:
		return BitZ
	default:
		return BitX
	}
}
