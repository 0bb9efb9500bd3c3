package world

import "strconv"

// Terrain identifies one independently indexed open-world map.
type Terrain int16

// Location is a position on a terrain. Y is height; the index only uses X/Z.
type Location struct {
	Terrain Terrain
	X       float64
	Y       float64
	Z       float64
}

// DistanceSquared returns the squared 3D separation, ignoring terrain.
func (l Location) DistanceSquared(o Location) float64 {
	dx := l.X - o.X
	dy := l.Y - o.Y
	dz := l.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

func (t Terrain) String() string {
	return "terrain#" + strconv.Itoa(int(t))
}
