package geometry

import (
	"fmt"
	"slices"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Arena owns every shape of a scene, indexed by ShapeID. Shapes are only ever
// appended; an id stays valid for the arena's lifetime. The arena is built by
// a single writer and must not change while rays are being traced.
type Arena struct {
	shapes []*Shape
}

// GetShape returns the shape with the given id. Looking up an id this arena
// never issued is a scene construction bug and panics.
func (a *Arena) GetShape(id ShapeID) *Shape {
	if id < 0 || int(id) >= len(a.shapes) {
		panic(fmt.Sprintf("geometry: shape %d is not registered", id))
	}
	return a.shapes[id]
}

// Len returns the number of registered shapes
func (a *Arena) Len() int {
	return len(a.shapes)
}

// AddShape registers s as a top-level shape and returns its id
func (a *Arena) AddShape(s *Shape) ShapeID {
	if s.ID != NoShape {
		panic(fmt.Sprintf("geometry: %v is already registered", s))
	}
	s.ID = ShapeID(len(a.shapes))
	a.shapes = append(a.shapes, s)
	RefreshBounds(a, s)
	return s.ID
}

// AddShapeToGroup registers child if needed and attaches it to group
func (a *Arena) AddShapeToGroup(group ShapeID, child *Shape) ShapeID {
	if child.ID == NoShape {
		a.AddShape(child)
	}
	a.Attach(group, child.ID)
	return child.ID
}

// Attach makes a registered, parentless shape a child of group and refreshes
// the cached bounds of group and its ancestors
func (a *Arena) Attach(group, child ShapeID) {
	parent := a.GetShape(group)
	g, ok := parent.Kind.(*Group)
	if !ok {
		panic(fmt.Sprintf("geometry: cannot attach to %v: not a group", parent))
	}
	a.adopt(group, child)
	g.Children = append(g.Children, child)
	a.refreshFrom(group)
}

// CreateCSG registers a CSG node over two registered, parentless operands
func (a *Arena) CreateCSG(op Operation, left, right ShapeID) ShapeID {
	if left == right {
		panic(fmt.Sprintf("geometry: csg operands must differ, got %d twice", left))
	}
	node := NewCSG(op, left, right)
	id := ShapeID(len(a.shapes))
	node.ID = id
	a.shapes = append(a.shapes, node)
	a.adopt(id, left)
	a.adopt(id, right)
	RefreshBounds(a, node)
	return id
}

// GetChildren returns a copy of the children of a group, or the left and
// right operands of a CSG node. Primitives have no children.
func (a *Arena) GetChildren(id ShapeID) []ShapeID {
	switch k := a.GetShape(id).Kind.(type) {
	case *Group:
		return slices.Clone(k.Children)
	case *CSG:
		return []ShapeID{k.Left, k.Right}
	}
	return nil
}

// SetTransform replaces a registered shape's transform and refreshes the
// cached bounds of every ancestor
func (a *Arena) SetTransform(id ShapeID, m core.Matrix) {
	s := a.GetShape(id)
	s.setTransform(m)
	if s.Parent != NoShape {
		a.refreshFrom(s.Parent)
	}
}

// TopLevel returns the shapes without a parent, in registration order
func (a *Arena) TopLevel() []*Shape {
	var roots []*Shape
	for _, s := range a.shapes {
		if s.Parent == NoShape {
			roots = append(roots, s)
		}
	}
	return roots
}

func (a *Arena) adopt(parent, child ShapeID) {
	c := a.GetShape(child)
	if c.Parent != NoShape {
		panic(fmt.Sprintf("geometry: %v already belongs to shape %d", c, c.Parent))
	}
	for p := parent; p != NoShape; p = a.GetShape(p).Parent {
		if p == child {
			panic(fmt.Sprintf("geometry: attaching %v to shape %d would create a cycle", c, parent))
		}
	}
	c.Parent = parent
}

// refreshFrom recomputes container bounds from id up to the root
func (a *Arena) refreshFrom(id ShapeID) {
	for id != NoShape {
		s := a.GetShape(id)
		RefreshBounds(a, s)
		id = s.Parent
	}
}
