//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package lut

import (
	"bufio"
	"fmt"
	"io"

	"github.com/markkurossi/text/superscript"
)

// Dump writes a diagnostic listing of the nodes.
func Dump(out io.Writer, nodes []*Node) error {
	_, err := fmt.Fprintf(out, "--- Dump of all collected LUTs (%d total) ---\n\n",
		len(nodes))
	if err != nil {
		return err
	}
	for _, n := range nodes {
		if err := DumpNode(out, n); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(out, "--- End of LUT dump ---\n")
	return err
}

// DumpNode writes a diagnostic listing of the node.
func DumpNode(out io.Writer, n *Node) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "  - Cell: %s (Type: %s, LUT%s)\n",
		n.Cell, n.Type, superscript.Itoa(n.Size))
	fmt.Fprintf(w, "    Output: %v\n", n.Output)
	fmt.Fprintf(w, "    Inputs:\n")
	for _, in := range n.Inputs {
		fmt.Fprintf(w, "      .%s: %v\n", InputName(in.Port), in.Sig)
	}
	fmt.Fprintf(w, "    INIT: %d'h%s\n", n.Table.Rows(), n.Table.Hex())
	fmt.Fprintf(w, "    INIT: %d'b%s\n\n", n.Table.Rows(), n.Table.Binary())
	return w.Flush()
}
