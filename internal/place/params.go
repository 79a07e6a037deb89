package place

// Orient selects which variable of a cell (or symmetry group) an index
// refers to.
type Orient int

const (
	// OrientH selects a cell's x coordinate.
	OrientH Orient = iota
	// OrientV selects a cell's y coordinate.
	OrientV
	// OrientAxis selects a symmetry group's mirror-axis variable. The
	// entity index is then a group index, not a cell index.
	OrientAxis
)

// ParamSpace is the flat buffer of free variables. Layout contract:
//
//	[0, numCells)            cell x coordinates
//	[numCells, 2*numCells)   cell y coordinates
//	[2*numCells, end)        one mirror axis per symmetry group
//
// All access goes through the accessors below; nothing else may do index
// arithmetic into the buffer. During a graph run the buffer is read-only;
// writes happen only between runs, owned by the driver.
type ParamSpace struct {
	vals      []float64
	numCells  int
	numGroups int
}

// NewParamSpace allocates a zeroed variable buffer.
func NewParamSpace(numCells, numGroups int) *ParamSpace {
	return &ParamSpace{
		vals:      make([]float64, 2*numCells+numGroups),
		numCells:  numCells,
		numGroups: numGroups,
	}
}

// Len returns the total number of free variables.
func (p *ParamSpace) Len() int { return len(p.vals) }

// NumCells returns the number of cells encoded in the buffer.
func (p *ParamSpace) NumCells() int { return p.numCells }

// NumGroups returns the number of symmetry-axis variables.
func (p *ParamSpace) NumGroups() int { return p.numGroups }

// Idx maps an entity index and orientation to a flat buffer offset.
func (p *ParamSpace) Idx(entity int, orient Orient) int {
	switch orient {
	case OrientH:
		return entity
	case OrientV:
		return entity + p.numCells
	default:
		return entity + 2*p.numCells
	}
}

func (p *ParamSpace) X(cell int) float64     { return p.vals[cell] }
func (p *ParamSpace) Y(cell int) float64     { return p.vals[cell+p.numCells] }
func (p *ParamSpace) Axis(group int) float64 { return p.vals[group+2*p.numCells] }

func (p *ParamSpace) SetX(cell int, v float64)     { p.vals[cell] = v }
func (p *ParamSpace) SetY(cell int, v float64)     { p.vals[cell+p.numCells] = v }
func (p *ParamSpace) SetAxis(group int, v float64) { p.vals[group+2*p.numCells] = v }

// Values exposes the backing buffer for the driver's coordinate-update step
// and for handing the vector to derivative-free optimizers. Callers must not
// write to it while a graph run is in flight.
func (p *ParamSpace) Values() []float64 { return p.vals }

// Snapshot returns a copy of the current variable values.
func (p *ParamSpace) Snapshot() []float64 {
	out := make([]float64, len(p.vals))
	copy(out, p.vals)
	return out
}

// Restore overwrites the buffer from a snapshot of matching length.
func (p *ParamSpace) Restore(vals []float64) {
	copy(p.vals, vals)
}
