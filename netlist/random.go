//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package netlist

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20"
)

// RandomParams specify the shape of a random LUT netlist.
type RandomParams struct {
	Inputs  int
	Outputs int
	LUTs    int
	// Window limits LUT input selection to the most recently created
	// signals. Small windows create netlists with lots of shared
	// inputs.
	Window int
	Prefix string
}

// PRG is a deterministic pseudo random generator producing a
// ChaCha20 keystream.
type PRG struct {
	cipher *chacha20.Cipher
	buf    [64]byte
	pos    int
}

// NewPRG creates a new generator from the seed.
func NewPRG(seed uint64) *PRG {
	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(key[:], seed)

	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		panic(err)
	}
	prg := &PRG{
		cipher: c,
	}
	prg.refill()
	return prg
}

func (prg *PRG) refill() {
	var zeros [64]byte
	prg.cipher.XORKeyStream(prg.buf[:], zeros[:])
	prg.pos = 0
}

// Uint64 returns the next 64 bits of the keystream.
func (prg *PRG) Uint64() uint64 {
	if prg.pos+8 > len(prg.buf) {
		prg.refill()
	}
	v := binary.LittleEndian.Uint64(prg.buf[prg.pos:])
	prg.pos += 8
	return v
}

// Intn returns a value in the range [0,n).
func (prg *PRG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(prg.Uint64() % uint64(n))
}

// Random creates a random acyclic LUT netlist.
func Random(name string, seed uint64, params RandomParams) *Module {
	prg := NewPRG(seed)
	m := NewModule(name)
	m.Attributes["top"] = NewConst(1, 32)

	prefix := params.Prefix
	if len(prefix) == 0 {
		prefix = "GTP_LUT"
	}
	window := params.Window
	if window < 6 {
		window = 6
	}

	in := m.AddPort("in", Input, params.Inputs)
	signals := append([]Bit(nil), in.Bits...)

	var outputs []Bit
	for i := 0; i < params.LUTs; i++ {
		size := 1 + prg.Intn(6)
		start := len(signals) - window
		if start < 0 {
			start = 0
		}
		pool := signals[start:]
		if size > len(pool) {
			size = len(pool)
		}
		if size == 0 {
			break
		}

		// Pick size distinct inputs from the pool.
		picked := make(map[int]bool)
		cell := m.AddCell(fmt.Sprintf("lut%d", i),
			fmt.Sprintf("%s%d", prefix, size))
		for port := 0; port < size; port++ {
			idx := prg.Intn(len(pool))
			for picked[idx] {
				idx = (idx + 1) % len(pool)
			}
			picked[idx] = true
			cell.SetPort(fmt.Sprintf("I%d", port), pool[idx])
			cell.PortDirections[fmt.Sprintf("I%d", port)] = Input
		}
		init := prg.Uint64()
		cell.SetParam("INIT", NewConst(init, 1<<size))

		o := m.NewBit()
		cell.SetPort("Z", o)
		cell.PortDirections["Z"] = Output
		signals = append(signals, o)
		outputs = append(outputs, o)
	}

	count := params.Outputs
	if count > len(outputs) {
		count = len(outputs)
	}
	if count > 0 {
		out := m.AddPort("out", Output, count)
		m.Connect(out.Bits, outputs[len(outputs)-count:])
	}
	return m
}
