package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/born-ml/nncore/internal/types"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List operand and operation type codes",
		Args:  cobra.NoArgs,
		Run:   TypesHandler,
	}
}

// TypesHandler prints the known operand and operation types.
func TypesHandler(cmd *cobra.Command, _ []string) {
	var operands [][]string
	for _, t := range types.OperandTypes() {
		tr := t.Trait()
		operands = append(operands, []string{
			strconv.FormatUint(uint64(t), 10),
			tr.Name,
			strconv.FormatUint(uint64(tr.Size), 10),
			strconv.FormatBool(tr.Scalar),
			strconv.FormatBool(tr.Quantized),
		})
	}

	var operations [][]string
	for _, t := range types.OperationTypes() {
		operations = append(operations, []string{strconv.FormatUint(uint64(t), 10), t.String()})
	}

	w := cmd.OutOrStdout()
	renderTable(w, []string{"CODE", "OPERAND TYPE", "SIZE", "SCALAR", "QUANTIZED"}, operands)
	fmt.Fprintln(w)
	renderTable(w, []string{"CODE", "OPERATION TYPE"}, operations)
}
