//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package lut

import (
	"fmt"
	"strings"

	"github.com/markkurossi/stitch/netlist"
	"github.com/pkg/errors"
)

// MaxSize is the maximum number of LUT inputs.
const MaxSize = 6

// Columns are the 64-bit column templates of the six LUT inputs:
// bit j of Columns[i] is set iff bit i of j is set.
var Columns = [MaxSize]uint64{
	0xAAAAAAAAAAAAAAAA,
	0xCCCCCCCCCCCCCCCC,
	0xF0F0F0F0F0F0F0F0,
	0xFF00FF00FF00FF00,
	0xFFFF0000FFFF0000,
	0xFFFFFFFF00000000,
}

// TruthTable holds the truth table of a LUT with Size inputs. Bit i
// of Bits is the output for the little-endian input address i.
type TruthTable struct {
	Bits uint64
	Size int
}

// NewTruthTable creates a truth table for size inputs.
func NewTruthTable(bits uint64, size int) TruthTable {
	tt := TruthTable{
		Bits: bits,
		Size: size,
	}
	tt.Bits &= tt.Mask()
	return tt
}

// Rows returns the number of rows in the truth table.
func (tt TruthTable) Rows() int {
	return 1 << tt.Size
}

// Mask returns the mask covering all rows of the truth table.
func (tt TruthTable) Mask() uint64 {
	if tt.Size >= MaxSize {
		return ^uint64(0)
	}
	return (uint64(1) << tt.Rows()) - 1
}

// Bit returns the value of the row addr. Out of range addresses read
// as false.
func (tt TruthTable) Bit(addr int) bool {
	if addr < 0 || addr >= tt.Rows() {
		return false
	}
	return tt.Bits&(1<<addr) != 0
}

// Eval evaluates the truth table with the input values.
func (tt TruthTable) Eval(inputs []bool) bool {
	var addr int
	for i, v := range inputs {
		if v {
			addr |= 1 << i
		}
	}
	return tt.Bit(addr)
}

// Restrict fixes the input port to value. The input becomes a
// don't-care of the result: both halves of its column hold the rows
// where the input has the value.
func (tt TruthTable) Restrict(port int, value bool) TruthTable {
	if port < 0 || port >= tt.Size {
		return tt
	}
	col := Columns[port] & tt.Mask()
	shift := uint(1) << port
	var bits uint64
	if value {
		half := tt.Bits & col
		bits = half | half>>shift
	} else {
		half := tt.Bits &^ col
		bits = half | half<<shift
	}
	return NewTruthTable(bits, tt.Size)
}

// Permute reorders the truth table inputs. Input i of the result is
// input order[i] of tt.
func (tt TruthTable) Permute(order []int) (TruthTable, error) {
	if len(order) != tt.Size {
		return TruthTable{}, errors.Errorf("permutation size %d != %d",
			len(order), tt.Size)
	}
	var seen [MaxSize]bool
	for _, o := range order {
		if o < 0 || o >= tt.Size || seen[o] {
			return TruthTable{}, errors.Errorf("invalid permutation %v", order)
		}
		seen[o] = true
	}
	result := TruthTable{
		Size: tt.Size,
	}
	for addr := 0; addr < tt.Rows(); addr++ {
		var old int
		for i := 0; i < tt.Size; i++ {
			if addr&(1<<i) != 0 {
				old |= 1 << order[i]
			}
		}
		if tt.Bit(old) {
			result.Bits |= 1 << addr
		}
	}
	return result, nil
}

// Binary returns the truth table as an MSB first binary string.
func (tt TruthTable) Binary() string {
	var sb strings.Builder
	for i := tt.Rows() - 1; i >= 0; i-- {
		if tt.Bit(i) {
			sb.WriteRune('1')
		} else {
			sb.WriteRune('0')
		}
	}
	return sb.String()
}

// Hex returns the truth table as an MSB first hex string. 64-bit
// tables are split into two 32-bit halves with an underscore.
func (tt TruthTable) Hex() string {
	digits := (tt.Rows() + 3) / 4
	s := fmt.Sprintf("%0*x", digits, tt.Bits&tt.Mask())
	if len(s) == 16 {
		s = s[:8] + "_" + s[8:]
	}
	return s
}

func (tt TruthTable) String() string {
	return fmt.Sprintf("%d'h%s", tt.Rows(), tt.Hex())
}

// ParseTruthTable parses a truth table for size inputs. The value is
// prefixed with 'b' for MSB first binary or 'h' for MSB first hex.
// Short values are zero extended and long values truncated.
func ParseTruthTable(s string, size int) (TruthTable, error) {
	if size < 0 || size > MaxSize {
		return TruthTable{}, errors.Errorf("invalid truth table size %d", size)
	}
	if len(s) < 2 {
		return TruthTable{}, errors.Errorf("truth table %q is too short", s)
	}
	var bits uint64
	var shift int
	switch s[0] {
	case 'b', 'B':
		shift = 1
	case 'h', 'H':
		shift = 4
	default:
		return TruthTable{}, errors.Errorf("invalid truth table format %q", s)
	}
	// Iterate LSB first so overlong values are truncated from the top.
	var pos int
	for i := len(s) - 1; i > 0; i-- {
		var digit uint64
		c := s[i]
		switch {
		case c == '_':
			continue
		case c >= '0' && c <= '9':
			digit = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			digit = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = uint64(c-'A') + 10
		default:
			return TruthTable{}, errors.Errorf("invalid digit %q in %q", c, s)
		}
		if digit >= 1<<shift {
			return TruthTable{}, errors.Errorf("invalid digit %q in %q", c, s)
		}
		if pos < 64 {
			bits |= digit << pos
		}
		pos += shift
	}
	return NewTruthTable(bits, size), nil
}

// FromConst creates a truth table for size inputs from the INIT
// parameter value. Undefined bits read as 0.
func FromConst(c netlist.Const, size int) TruthTable {
	return NewTruthTable(c.Uint64(), size)
}

// Const returns the truth table as an INIT parameter value.
func (tt TruthTable) Const() netlist.Const {
	return netlist.NewConst(tt.Bits, tt.Rows())
}

// WeightOrder computes the Permute order that converts a truth table
// from the input weights from to the input weights to. Character i of
// a weight string names the input with the address weight 2^i.
func WeightOrder(from, to string) ([]int, error) {
	if len(from) != len(to) {
		return nil, errors.Errorf("weights %q and %q have different lengths",
			from, to)
	}
	if len(from) > MaxSize {
		return nil, errors.Errorf("too many inputs: %d > %d",
			len(from), MaxSize)
	}
	pos := make(map[byte]int)
	for i := 0; i < len(from); i++ {
		if _, ok := pos[from[i]]; ok {
			return nil, errors.Errorf("input %c repeated in %q", from[i], from)
		}
		pos[from[i]] = i
	}
	order := make([]int, len(to))
	for i := 0; i < len(to); i++ {
		p, ok := pos[to[i]]
		if !ok {
			return nil, errors.Errorf("input %c not in %q", to[i], from)
		}
		order[i] = p
	}
	return order, nil
}
