package geo

import "math"

type cell struct {
	x, y int
}

// Grid buckets point ids into square cells for neighbour candidate lookup.
//
// Cell coordinates are the floor of a point's offset from the origin corner,
// projected into meters and divided by the cell size. The longitude scale is
// fixed at construction time from refLat.
// Not safe for concurrent mutation.
type Grid struct {
	originLat float64
	originLng float64
	cellM     float64
	mPerLat   float64
	mPerLng   float64
	cells     map[cell][]int
}

// NewGrid creates a grid whose cells are cellSizeM meters wide, measured from
// the minimum corner of bounds, with the longitude scale taken at refLat.
func NewGrid(bounds Bounds, refLat, cellSizeM float64) *Grid {
	return &Grid{
		originLat: bounds.LatMin,
		originLng: bounds.LngMin,
		cellM:     cellSizeM,
		mPerLat:   MetersPerDegLat,
		mPerLng:   MetersPerDegLng(refLat),
		cells:     make(map[cell][]int),
	}
}

func (g *Grid) cellOf(lat, lng float64) cell {
	xm := (lng - g.originLng) * g.mPerLng
	ym := (lat - g.originLat) * g.mPerLat
	return cell{
		x: int(math.Floor(xm / g.cellM)),
		y: int(math.Floor(ym / g.cellM)),
	}
}

// Insert appends id to the bucket of the cell containing (lat, lng).
func (g *Grid) Insert(id int, lat, lng float64) {
	c := g.cellOf(lat, lng)
	g.cells[c] = append(g.cells[c], id)
}

// Candidates returns every id stored in the cell of (lat, lng) and its eight
// neighbours. The result is a fresh slice the caller may reorder. It may hold
// ids farther away than one cell size, so callers must filter by distance.
func (g *Grid) Candidates(lat, lng float64) []int {
	c := g.cellOf(lat, lng)
	var out []int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			out = append(out, g.cells[cell{c.x + dx, c.y + dy}]...)
		}
	}
	return out
}

