// Package graph holds the indirect object graph a PDF document is assembled
// from. Objects are registered against a Graph, which hands out monotonically
// increasing object numbers; references between objects are expressed as
// ObjectRef values that must resolve within the same Graph.
package graph

import "fmt"

// ObjectRef identifies an indirect object within a Graph.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// State tracks the document lifecycle. Transitions are forward-only:
// Building -> Finalizing -> Serialized.
type State int

const (
	StateBuilding State = iota
	StateFinalizing
	StateSerialized
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateFinalizing:
		return "finalizing"
	case StateSerialized:
		return "serialized"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Graph owns the set of registered indirect objects. Object numbers start at
// 1 and are never reused. A Graph is not safe for concurrent mutation.
type Graph struct {
	objects []Object // index i holds object number i+1; nil means allocated but unset
	state   State
}

func New() *Graph { return &Graph{} }

// State returns the current lifecycle state.
func (g *Graph) State() State { return g.state }

// Advance moves the graph to a later lifecycle state. Moving backwards fails
// with a FrozenDocumentError.
func (g *Graph) Advance(to State) error {
	if to < g.state {
		return &FrozenDocumentError{Op: fmt.Sprintf("advance to %s", to), State: g.state}
	}
	g.state = to
	return nil
}

// Register stores obj and assigns it the next sequential object number.
func (g *Graph) Register(obj Object) (ObjectRef, error) {
	ref, err := g.Allocate()
	if err != nil {
		return ObjectRef{}, err
	}
	g.objects[ref.Num-1] = obj
	return ref, nil
}

// Allocate reserves the next object number without supplying the object yet.
// Builders use this for forward references (a page's /Parent, outline /Next).
// The object must be supplied via Set before serialization.
func (g *Graph) Allocate() (ObjectRef, error) {
	if g.state == StateSerialized {
		return ObjectRef{}, &FrozenDocumentError{Op: "register object", State: g.state}
	}
	g.objects = append(g.objects, nil)
	return ObjectRef{Num: len(g.objects), Gen: 0}, nil
}

// Set supplies the object for a previously allocated reference.
func (g *Graph) Set(ref ObjectRef, obj Object) error {
	if g.state == StateSerialized {
		return &FrozenDocumentError{Op: "set object", State: g.state}
	}
	if ref.Num < 1 || ref.Num > len(g.objects) {
		return &DanglingReferenceError{Ref: ref}
	}
	g.objects[ref.Num-1] = obj
	return nil
}

// Resolve returns the object registered under ref.
func (g *Graph) Resolve(ref ObjectRef) (Object, error) {
	if ref.Num < 1 || ref.Num > len(g.objects) {
		return nil, &DanglingReferenceError{Ref: ref}
	}
	obj := g.objects[ref.Num-1]
	if obj == nil {
		return nil, &DanglingReferenceError{Ref: ref}
	}
	return obj, nil
}

// Len reports the number of allocated object slots.
func (g *Graph) Len() int { return len(g.objects) }

// Each visits every object in ascending object-number order. Allocated but
// unset slots are reported with a nil object so callers can detect them.
func (g *Graph) Each(fn func(ref ObjectRef, obj Object) error) error {
	for i, obj := range g.objects {
		if err := fn(ObjectRef{Num: i + 1, Gen: 0}, obj); err != nil {
			return err
		}
	}
	return nil
}

// Validate walks the graph and checks that every reference held by any
// registered object resolves to a set object.
func (g *Graph) Validate() error {
	return g.Each(func(ref ObjectRef, obj Object) error {
		if obj == nil {
			return &DanglingReferenceError{Ref: ref}
		}
		return validateRefs(g, obj)
	})
}

func validateRefs(g *Graph, obj Object) error {
	switch o := obj.(type) {
	case Ref:
		if _, err := g.Resolve(o.Ref); err != nil {
			return err
		}
	case *Array:
		for _, item := range o.Items {
			if err := validateRefs(g, item); err != nil {
				return err
			}
		}
	case *Dict:
		for _, k := range o.SortedKeys() {
			if err := validateRefs(g, o.KV[k]); err != nil {
				return err
			}
		}
	case *Stream:
		if o.Dict != nil {
			if err := validateRefs(g, o.Dict); err != nil {
				return err
			}
		}
	}
	return nil
}
