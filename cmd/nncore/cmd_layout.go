package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/nncore/internal/fixture"
	"github.com/born-ml/nncore/internal/layout"
	"github.com/born-ml/nncore/internal/model"
	"github.com/born-ml/nncore/internal/types"
)

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: expected an unsigned 32-bit integer", s)
	}
	return uint32(n), nil
}

func parseDims(args []string) ([]uint32, error) {
	dims := make([]uint32, len(args))
	for i, a := range args {
		d, err := parseUint32(a)
		if err != nil {
			return nil, err
		}
		dims[i] = d
	}
	return dims, nil
}

func newSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size TYPE [DIM...]",
		Short: "Print the byte size of an operand",
		Example: `  nncore size TENSOR_FLOAT32 2 3
  nncore size 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: SizeHandler,
	}
}

// SizeHandler prints the byte size of an operand of the given type and
// dimensions.
func SizeHandler(cmd *cobra.Command, args []string) error {
	t, err := types.ParseOperandType(args[0])
	if err != nil {
		return err
	}
	if !t.Valid() {
		return fmt.Errorf("invalid operand type code %d", uint32(t))
	}
	dims, err := parseDims(args[1:])
	if err != nil {
		return err
	}

	size, err := layout.CheckedSizeOf(t, dims)
	if err != nil {
		return fmt.Errorf("%s%s: %w", t, model.Shape(dims), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), size)
	return nil
}

func newAlignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "align OFFSET LENGTH",
		Short: "Print the padding needed before a value",
		Args:  cobra.ExactArgs(2),
		RunE:  AlignHandler,
	}
}

// AlignHandler prints the padding to insert at OFFSET before a value of
// LENGTH bytes.
func AlignHandler(cmd *cobra.Command, args []string) error {
	offset, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	length, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid length %q", args[1])
	}
	fmt.Fprintln(cmd.OutOrStdout(), layout.AlignBytesNeeded(offset, length))
	return nil
}

func newLayoutCmd() *cobra.Command {
	layoutCmd := &cobra.Command{
		Use:   "layout [LENGTH...]",
		Short: "Pack values into one pool and print their placements",
		Long: `Pack values into one pool and print their placements.

With --model, the values are the declared inputs and outputs of the model,
in order. Otherwise they are the byte lengths given as arguments.`,
		RunE: LayoutHandler,
	}
	layoutCmd.Flags().String("model", "", "lay out the inputs and outputs of this model file")
	return layoutCmd
}

// LayoutHandler packs values with layout.Packer and prints a placement
// table.
func LayoutHandler(cmd *cobra.Command, args []string) error {
	modelPath, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}

	var names []string
	var lengths []uint32
	switch {
	case modelPath != "" && len(args) > 0:
		return fmt.Errorf("give either --model or lengths, not both")
	case modelPath != "":
		m, err := fixture.LoadModel(modelPath)
		if err != nil {
			return err
		}
		names, lengths, err = modelValues(m)
		if err != nil {
			return err
		}
	case len(args) > 0:
		lengths, err = parseDims(args)
		if err != nil {
			return err
		}
		for i := range lengths {
			names = append(names, strconv.Itoa(i))
		}
	default:
		return fmt.Errorf("nothing to lay out")
	}

	var p layout.Packer
	data := make([][]string, 0, len(lengths))
	for i, l := range lengths {
		pl, err := p.Add(l)
		if err != nil {
			return err
		}
		data = append(data, []string{
			names[i],
			strconv.FormatUint(uint64(pl.Offset), 10),
			strconv.FormatUint(uint64(pl.Length), 10),
			strconv.FormatUint(uint64(pl.Padding), 10),
		})
	}

	w := cmd.OutOrStdout()
	renderTable(w, []string{"VALUE", "OFFSET", "LENGTH", "PADDING"}, data)
	fmt.Fprintf(w, "\ntotal %d bytes\n", p.Size())
	return nil
}

// modelValues returns a name and byte size for every declared input and
// output of m.
func modelValues(m *model.Model) ([]string, []uint32, error) {
	var names []string
	var lengths []uint32
	add := func(kind string, list []uint32) error {
		for i, idx := range list {
			if idx >= m.OperandCount() {
				return fmt.Errorf("%s %d: operand %d out of range", kind, i, idx)
			}
			o := &m.Operands[idx]
			size, err := layout.CheckedSizeOf(o.Type, o.Dimensions)
			if err != nil {
				return fmt.Errorf("%s %d: %w", kind, i, err)
			}
			names = append(names, fmt.Sprintf("%s %d (%s%s)", kind, i, o.Type, o.Dimensions))
			lengths = append(lengths, size)
		}
		return nil
	}

	if err := add("input", m.InputIndexes); err != nil {
		return nil, nil, err
	}
	if err := add("output", m.OutputIndexes); err != nil {
		return nil, nil, err
	}
	return names, lengths, nil
}

func renderTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
