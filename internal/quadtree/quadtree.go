// Package quadtree implements a point quadtree over a fixed square region.
// A leaf holding more than capacity items splits into four quadrants;
// quadrants are never merged back. Leaves at maxDepth keep an unbounded
// bucket so stacked points cannot recurse forever.
// Trees are not safe for concurrent use; callers hold their own lock.
package quadtree

const (
	DefaultCapacity = 16
	DefaultMaxDepth = 12
)

// Bounds is a closed axis-aligned rectangle in the X/Z plane.
type Bounds struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// Contains reports whether (x, z) lies inside b, edges included.
func (b Bounds) Contains(x, z float64) bool {
	return x >= b.MinX && x <= b.MaxX && z >= b.MinZ && z <= b.MaxZ
}

func (b Bounds) intersectsBox(minX, minZ, maxX, maxZ float64) bool {
	return b.MinX <= maxX && b.MaxX >= minX && b.MinZ <= maxZ && b.MaxZ >= minZ
}

type item[T comparable] struct {
	x, z  float64
	value T
}

type node[T comparable] struct {
	bounds   Bounds
	depth    int
	midX     float64
	midZ     float64
	items    []item[T]
	children *[4]node[T] // nil while leaf; order SW, SE, NW, NE
}

// Tree stores values of type T keyed by their X/Z coordinates.
type Tree[T comparable] struct {
	root     node[T]
	capacity int
	maxDepth int
	size     int
	depth    int
}

// Option configures a Tree.
type Option func(*options)

type options struct {
	capacity int
	maxDepth int
}

// WithCapacity sets how many items a leaf holds before splitting.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithMaxDepth sets the deepest level a leaf may split to.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxDepth = n
		}
	}
}

// New returns an empty tree covering bounds. Capacity and depth default to
// DefaultCapacity and DefaultMaxDepth unless overridden by opts.
func New[T comparable](bounds Bounds, opts ...Option) *Tree[T] {
	o := options{capacity: DefaultCapacity, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	t := &Tree[T]{capacity: o.capacity, maxDepth: o.maxDepth}
	t.root = newNode[T](bounds, 0)
	return t
}

func newNode[T comparable](b Bounds, depth int) node[T] {
	return node[T]{
		bounds: b,
		depth:  depth,
		midX:   b.MinX + (b.MaxX-b.MinX)/2,
		midZ:   b.MinZ + (b.MaxZ-b.MinZ)/2,
	}
}

// Bounds returns the region covered by the tree.
func (t *Tree[T]) Bounds() Bounds { return t.root.bounds }

// Len returns the number of stored items.
func (t *Tree[T]) Len() int { return t.size }

// Depth returns the deepest partition level created so far (0 = root only).
func (t *Tree[T]) Depth() int { return t.depth }

// Insert stores v at (x, z). Points outside the tree bounds are rejected
// and leave the tree untouched.
func (t *Tree[T]) Insert(x, z float64, v T) bool {
	if !t.root.bounds.Contains(x, z) {
		return false
	}
	n := &t.root
	for n.children != nil {
		n = n.child(x, z)
	}
	n.items = append(n.items, item[T]{x: x, z: z, value: v})
	t.size++
	if len(n.items) > t.capacity {
		t.split(n)
	}
	return true
}

// split partitions n and pushes its items down, recursing into any
// quadrant that is still over capacity.
func (t *Tree[T]) split(n *node[T]) {
	if n.depth >= t.maxDepth {
		return
	}
	b := n.bounds
	d := n.depth + 1
	n.children = &[4]node[T]{
		newNode[T](Bounds{MinX: b.MinX, MinZ: b.MinZ, MaxX: n.midX, MaxZ: n.midZ}, d),
		newNode[T](Bounds{MinX: n.midX, MinZ: b.MinZ, MaxX: b.MaxX, MaxZ: n.midZ}, d),
		newNode[T](Bounds{MinX: b.MinX, MinZ: n.midZ, MaxX: n.midX, MaxZ: b.MaxZ}, d),
		newNode[T](Bounds{MinX: n.midX, MinZ: n.midZ, MaxX: b.MaxX, MaxZ: b.MaxZ}, d),
	}
	if d > t.depth {
		t.depth = d
	}
	for _, it := range n.items {
		c := n.child(it.x, it.z)
		c.items = append(c.items, it)
	}
	n.items = nil
	for i := range n.children {
		if c := &n.children[i]; len(c.items) > t.capacity {
			t.split(c)
		}
	}
}

// child returns the quadrant containing (x, z). Points on a midline go east/north.
func (n *node[T]) child(x, z float64) *node[T] {
	i := 0
	if x >= n.midX {
		i |= 1
	}
	if z >= n.midZ {
		i |= 2
	}
	return &n.children[i]
}

// Remove deletes v previously inserted at (x, z). Missing values are a no-op.
func (t *Tree[T]) Remove(x, z float64, v T) bool {
	if !t.root.bounds.Contains(x, z) {
		return false
	}
	n := &t.root
	for n.children != nil {
		n = n.child(x, z)
	}
	for i := range n.items {
		if n.items[i].value != v {
			continue
		}
		last := len(n.items) - 1
		n.items[i] = n.items[last]
		var zero item[T]
		n.items[last] = zero
		n.items = n.items[:last]
		t.size--
		return true
	}
	return false
}

// QueryRange returns every value within Euclidean distance r of (x, z).
func (t *Tree[T]) QueryRange(x, z, r float64) []T {
	var out []T
	t.ForRange(x, z, r, func(v T) {
		out = append(out, v)
	})
	return out
}

// ForRange calls fn for every value within Euclidean distance r of (x, z).
// Only nodes whose region meets the query circle's bounding box are visited.
func (t *Tree[T]) ForRange(x, z, r float64, fn func(v T)) {
	if r < 0 || t.size == 0 {
		return
	}
	t.root.forRange(x, z, r, r*r, fn, nil)
}

// forRange walks the nodes meeting the query box. seen, when set, is called
// for each node entered.
func (n *node[T]) forRange(x, z, r, r2 float64, fn func(v T), seen func(*node[T])) {
	if !n.bounds.intersectsBox(x-r, z-r, x+r, z+r) {
		return
	}
	if seen != nil {
		seen(n)
	}
	if n.children != nil {
		for i := range n.children {
			n.children[i].forRange(x, z, r, r2, fn, seen)
		}
		return
	}
	for _, it := range n.items {
		dx := it.x - x
		dz := it.z - z
		if dx*dx+dz*dz <= r2 {
			fn(it.value)
		}
	}
}

// visit walks every node in depth-first order. Used by tests to check
// structural invariants.
func (t *Tree[T]) visit(fn func(n *node[T])) {
	var walk func(n *node[T])
	walk = func(n *node[T]) {
		fn(n)
		if n.children != nil {
			for i := range n.children {
				walk(&n.children[i])
			}
		}
	}
	walk(&t.root)
}
