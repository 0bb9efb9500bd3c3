package awareness

import (
	"math"

	"github.com/l1jgo/awareness/internal/world"
)

// Policy decides which range-query candidates an observer becomes aware of.
// Rules apply in order and the first failing rule excludes the candidate:
//  1. an object is never aware of itself
//  2. players without an attached owner are excluded
//  3. a nonzero LoadRange admits candidates within that 3D distance
//  4. otherwise candidates within DefaultRange are admitted
//
// Both distance limits are inclusive.
type Policy struct {
	DefaultRange float64
}

// Visible reports whether observer, standing at at, should know about candidate.
func (p Policy) Visible(observer world.Object, at world.Location, candidate world.Object) bool {
	if candidate.ObjectID() == observer.ObjectID() {
		return false
	}
	if candidate.Traits().Has(world.TraitPlayer) && !candidate.HasOwner() {
		return false
	}
	loc, ok := candidate.Location()
	if !ok {
		return false
	}
	dist := math.Sqrt(at.DistanceSquared(loc))
	if lr := candidate.LoadRange(); lr != 0 {
		return dist <= lr
	}
	return dist <= p.DefaultRange
}
