package graph

import "fmt"

// DanglingReferenceError reports a reference to an object that was never
// registered (or allocated but never set) in the graph.
type DanglingReferenceError struct {
	Ref ObjectRef
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: %s does not resolve to a registered object", e.Ref)
}

// FrozenDocumentError reports a mutation attempted after the document was
// finalized for output.
type FrozenDocumentError struct {
	Op    string
	State State
}

func (e *FrozenDocumentError) Error() string {
	return fmt.Sprintf("document is frozen (%s): cannot %s", e.State, e.Op)
}
