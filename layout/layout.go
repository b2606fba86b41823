package layout

// Dimension is the size of a sheet or of an array, in lines and columns.
type Dimension struct {
	Lines   int64
	Columns int64
}

func (d Dimension) Max(other Dimension) Dimension {
	if other.Lines > d.Lines {
		d.Lines = other.Lines
	}
	if other.Columns > d.Columns {
		d.Columns = other.Columns
	}
	return d
}

func (d Dimension) Contains(pos Position) bool {
	return pos.Line >= 1 && pos.Column >= 1 && pos.Line <= d.Lines && pos.Column <= d.Columns
}

func (d Dimension) Cells() int64 {
	return d.Lines * d.Columns
}
