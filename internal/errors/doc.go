// Package errors provides structured, coded errors for vdiff.
//
// # Error Categories
//
// Errors are organized into categories:
//   - apply: a patch script could not be applied to a live tree
//   - protocol: wire payloads that cannot be decoded
//   - input: tree documents that cannot be read
//   - config: configuration files
//   - storage: snapshot backends
//
// # Fatal Errors
//
// Codes E100 to E104 are consistency violations: the live tree no longer
// matches the tree a patch script was computed against. IsFatal reports
// them. They are never repaired locally; callers propagate them and rebuild
// the live tree from scratch.
//
// # Usage
//
//	err := errors.New(errors.CodeTagMismatch).
//	    AtPath(path).
//	    WithDetailf("want <%s>, got <%s>", want, got)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: Tag assertion failed
//	//
//	//   at path [0,2]
//	//
//	//   want <li>, got <p>
//	//
//	//   This is a fatal consistency violation.
//	//   Hint: Discard the live tree and mount the new tree from scratch.
package errors
