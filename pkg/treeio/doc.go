// Package treeio reads and writes trees, skip trees and patch scripts as
// JSON, YAML and HTML documents.
//
//	prev, err := treeio.Load("prev.html")
//	next, err := treeio.Load("next.yaml")
//	treeio.EncodePatches(os.Stdout, vdom.Diff(prev, next), treeio.FormatJSON)
//
// Malformed input is reported as an E300 error whose detail names the
// offending location, e.g. "$.children[2].attrs: must be an object or a
// list". Unknown formats are E301.
package treeio
