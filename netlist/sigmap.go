//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package netlist

// SigMap maps bits to the canonical representatives of their
// electrically equivalent classes. Constants represent their class;
// otherwise the smallest net ID does.
type SigMap struct {
	parent map[Bit]Bit
}

// NewSigMap creates a signal map from the module connections.
func NewSigMap(m *Module) *SigMap {
	sm := &SigMap{
		parent: make(map[Bit]Bit),
	}
	if m != nil {
		for _, conn := range m.Connections {
			for i := range conn.LHS {
				sm.Add(conn.LHS[i], conn.RHS[i])
			}
		}
	}
	return sm
}

func (sm *SigMap) find(b Bit) Bit {
	root := b
	for {
		p, ok := sm.parent[root]
		if !ok || p == root {
			break
		}
		root = p
	}
	// Path compression.
	for b != root {
		next := sm.parent[b]
		sm.parent[b] = root
		b = next
	}
	return root
}

// before tests if a should represent a class containing b.
func before(a, b Bit) bool {
	if a.IsConst() != b.IsConst() {
		return a.IsConst()
	}
	if a.IsConst() {
		// Driven constants win over undefined ones.
		return a > b
	}
	return a < b
}

// Add merges the classes of the bits a and b.
func (sm *SigMap) Add(a, b Bit) {
	ra := sm.find(a)
	rb := sm.find(b)
	if ra == rb {
		return
	}
	if before(ra, rb) {
		sm.parent[rb] = ra
	} else {
		sm.parent[ra] = rb
	}
}

// Map returns the canonical representative of the bit.
func (sm *SigMap) Map(b Bit) Bit {
	if sm == nil {
		return b
	}
	return sm.find(b)
}

// MapBits maps all bits of the vector.
func (sm *SigMap) MapBits(bits []Bit) []Bit {
	result := make([]Bit, len(bits))
	for i, b := range bits {
		result[i] = sm.Map(b)
	}
	return result
}
