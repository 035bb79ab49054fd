// Package livetree is the reference platform binding for vdom patch scripts.
//
// A Tree is a mutable materialization of a virtual tree. Nodes live in an
// arena and are addressed by NodeID; parent and child relations are stored
// as IDs rather than pointers.
//
// Applying a script is a two-phase operation:
//
//	tree := livetree.Mount(prev)
//	if err := tree.Apply(vdom.Diff(prev, next)); err != nil {
//	    if errors.IsFatal(err) {
//	        tree = livetree.Mount(next) // rebuild, never repair
//	    }
//	}
//
// Every path in the script, including move sources, is resolved against the
// tree as it was before the first mutation. Patches are then applied
// strictly in order. Any resolution or application failure is a fatal
// consistency violation and aborts the script.
package livetree
