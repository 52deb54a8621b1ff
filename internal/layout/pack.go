package layout

import "fmt"

// Placement is the location of one value inside a packed pool.
type Placement struct {
	Offset  uint32
	Length  uint32
	Padding uint32 // Bytes inserted before Offset.
}

// Packer lays values out one after another in a single pool, inserting the
// padding AlignBytesNeeded asks for before each value.
//
// The zero value is an empty pool starting at offset 0.
type Packer struct {
	size       uint32
	placements []Placement
}

// Add reserves room for a value of the given length and returns its placement.
func (p *Packer) Add(length uint32) (Placement, error) {
	pad := AlignBytesNeeded(p.size, uint64(length))

	offset, err := EndOffset(p.size, pad)
	if err != nil {
		return Placement{}, fmt.Errorf("padding value %d: %w", len(p.placements), err)
	}
	end, err := EndOffset(offset, length)
	if err != nil {
		return Placement{}, fmt.Errorf("placing value %d (%d bytes at %d): %w", len(p.placements), length, offset, err)
	}

	pl := Placement{Offset: offset, Length: length, Padding: pad}
	p.placements = append(p.placements, pl)
	p.size = end
	return pl, nil
}

// Size returns the number of bytes used so far, including padding.
func (p *Packer) Size() uint32 {
	return p.size
}

// Placements returns the values placed so far, in insertion order.
func (p *Packer) Placements() []Placement {
	return p.placements
}

// Pack places values of the given lengths in order and returns their
// placements together with the total pool size.
func Pack(lengths ...uint32) ([]Placement, uint32, error) {
	var p Packer
	for _, l := range lengths {
		if _, err := p.Add(l); err != nil {
			return nil, 0, err
		}
	}
	return p.Placements(), p.Size(), nil
}
