package layout

// Alignment returns the boundary a value of the given length is placed on:
// 1 for lengths 0 and 1, 2 for lengths 2 and 3, and 4 for anything longer.
// The policy is capped at 4 bytes regardless of element width.
func Alignment(length uint64) uint32 {
	switch {
	case length < 2:
		return 1
	case length < 4:
		return 2
	default:
		return 4
	}
}

// AlignBytesNeeded returns the number of padding bytes to add after offset so
// that a value of the given length starts on its alignment boundary.
func AlignBytesNeeded(offset uint32, length uint64) uint32 {
	mask := Alignment(length) - 1
	// -offset & mask is the distance to the next multiple of mask+1.
	return -offset & mask
}
