package place

import "github.com/cwbudde/analogplace/internal/db"

// SigPathSeg is a decomposed signal-path segment: four pins spanning three
// cells. The first hop runs SPin -> MidPinA, the second MidPinB -> TPin;
// the two mid pins sit on the shared middle cell.
type SigPathSeg struct {
	SPin    int
	MidPinA int
	MidPinB int
	TPin    int
}

// DecomposeSignalPaths derives 3-cell path segments from net topology by
// chaining 2-pin nets through shared cells: whenever net A ends on the cell
// net B starts from (through distinct pins), the pair forms one segment.
// Nets are chained in index order so the output is deterministic.
func DecomposeSignalPaths(d *db.Database) []SigPathSeg {
	// Incident 2-pin net endpoints per cell.
	type endpoint struct {
		net      int
		pinHere  int // pin on this cell
		pinOther int // the net's far pin
	}
	byCell := make([][]endpoint, d.NumCells())
	for netIdx := range d.Nets {
		net := &d.Nets[netIdx]
		if len(net.Pins) != 2 {
			continue
		}
		p0, p1 := net.Pins[0], net.Pins[1]
		c0 := d.Pins[p0].Cell
		c1 := d.Pins[p1].Cell
		if c0 == c1 {
			continue
		}
		byCell[c0] = append(byCell[c0], endpoint{net: netIdx, pinHere: p0, pinOther: p1})
		byCell[c1] = append(byCell[c1], endpoint{net: netIdx, pinHere: p1, pinOther: p0})
	}

	var segs []SigPathSeg
	for cell := range byCell {
		eps := byCell[cell]
		for i := 0; i < len(eps); i++ {
			for j := i + 1; j < len(eps); j++ {
				a, b := eps[i], eps[j]
				if a.net == b.net {
					continue
				}
				// Skip if the far cells coincide with each other or with
				// the middle cell: the segment would be degenerate.
				farA := d.Pins[a.pinOther].Cell
				farB := d.Pins[b.pinOther].Cell
				if farA == farB || farA == cell || farB == cell {
					continue
				}
				segs = append(segs, SigPathSeg{
					SPin:    a.pinOther,
					MidPinA: a.pinHere,
					MidPinB: b.pinHere,
					TPin:    b.pinOther,
				})
			}
		}
	}
	return segs
}
