package treeio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

const sampleJSON = `{
  "tag": "div",
  "attrs": {"id": "app", "class": "main", "tabindex": 2, "hidden": false},
  "children": [
    "hello",
    {"comment": "note"},
    {"raw": "<b>x</b>"},
    {"tag": "ul", "children": [
      {"tag": "li", "attrs": [{"name": "key", "value": "a"}, {"name": "style", "style": [["color", "red"]]}], "children": ["A"]},
      {"tag": "li", "attrs": [{"name": "key", "value": "b"}, {"name": "onclick", "listener": {"event": "click", "id": "h2"}}], "children": ["B"]}
    ]},
    {"fragment": ["f1", {"text": "f2"}]},
    {"component": {"type": "Counter", "attrs": {"start": 1.5}}},
    null
  ]
}`

const sampleYAML = `
tag: div
attrs:
  id: app
  class: main
  tabindex: 2
  hidden: false
children:
  - hello
  - comment: note
  - raw: <b>x</b>
  - tag: ul
    children:
      - tag: li
        attrs:
          - {name: key, value: a}
          - {name: style, style: [[color, red]]}
        children: [A]
      - tag: li
        attrs:
          - {name: key, value: b}
          - {name: onclick, listener: {event: click, id: h2}}
        children: [B]
  - fragment: [f1, {text: f2}]
  - component: {type: Counter, attrs: {start: 1.5}}
`

func sampleTree() *vdom.Node {
	return vdom.Div(
		vdom.Class("main"), vdom.Attr("hidden", false), vdom.ID("app"), vdom.Attr("tabindex", 2),
		vdom.Text("hello"),
		vdom.Comment("note"),
		vdom.Raw("<b>x</b>"),
		vdom.Ul(
			vdom.Li(vdom.Key("a"), vdom.Style(vdom.Prop("color", "red")), "A"),
			vdom.Li(vdom.Key("b"), vdom.On("click", "h2", nil), "B"),
		),
		vdom.Fragment("f1", vdom.Text("f2")),
		vdom.Component("Counter", vdom.Attr("start", 1.5)),
	)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json", FormatJSON, sampleJSON},
		{"yaml", FormatYAML, sampleYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !vdom.Equal(got, sampleTree()) {
				t.Errorf("decoded tree differs from sample")
			}
			if k, ok := got.Children[3].Children[1].Key(); !ok || k != "b" {
				t.Errorf("second item key = %q, %v; want b", k, ok)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, sampleTree(), f); err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := Decode(&buf, f)
			if err != nil {
				t.Fatalf("Decode: %v\n%s", err, buf.String())
			}
			if !vdom.Equal(got, sampleTree()) {
				t.Errorf("round trip changed the tree:\n%s", buf.String())
			}
		})
	}
}

func TestEncodeHTMLUnsupported(t *testing.T) {
	err := Encode(&bytes.Buffer{}, vdom.Div(), FormatHTML)
	if !errors.Is(err, errors.CodeUnsupportedInput) {
		t.Errorf("got %v, want E301", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		detail string
	}{
		{"not json", `{`, ""},
		{"empty", ``, "empty document"},
		{"number node", `1`, "$: node must be a string or an object"},
		{"two kinds", `{"tag": "p", "text": "x"}`, `$: node has both "tag" and "text"`},
		{"no kind", `{"foo": 1}`, "$: object is not a node"},
		{"unknown key", `{"tag": "p", "kids": []}`, `$: unexpected key "kids"`},
		{"empty tag", `{"tag": ""}`, "$: empty tag"},
		{"bad children", `{"tag": "p", "children": {}}`, "$.children: must be a list"},
		{"bad nested attr", `{"tag": "p", "children": [{"tag": "a", "attrs": 3}]}`, "$.children[0].attrs: must be an object or a list"},
		{"attr object value", `{"tag": "p", "attrs": {"title": {}}}`, "$.attrs.title: must be a scalar"},
		{"nameless attr", `{"tag": "p", "attrs": [{"value": 1}]}`, "$.attrs[0]: attribute without a name"},
		{"bad style pair", `{"tag": "p", "attrs": [{"name": "style", "style": [["color"]]}]}`, "$.attrs[0].style[0]: must be a [name, value] pair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), FormatJSON)
			if !errors.Is(err, errors.CodeUnreadableInput) {
				t.Fatalf("got %v, want E300", err)
			}
			if tt.detail == "" {
				return
			}
			e := errors.FromError(err, "")
			if !strings.HasPrefix(e.Detail, tt.detail) {
				t.Errorf("detail = %q, want prefix %q", e.Detail, tt.detail)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.json", FormatJSON, true},
		{"dir/b.YAML", FormatYAML, true},
		{"c.yml", FormatYAML, true},
		{"d.htm", FormatHTML, true},
		{"e.html", FormatHTML, true},
		{"f.txt", 0, false},
		{"noext", 0, false},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.ok {
			if err != nil || got != tt.want {
				t.Errorf("FormatFromPath(%q) = %v, %v; want %v", tt.path, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, errors.CodeUnsupportedInput) {
			t.Errorf("FormatFromPath(%q) error = %v, want E301", tt.path, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !vdom.Equal(got, sampleTree()) {
		t.Errorf("loaded tree differs from sample")
	}

	_, err = Load(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.CodeUnreadableInput) {
		t.Errorf("missing file: got %v, want E300", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"tag": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(bad)
	e := errors.FromError(err, "")
	if e == nil || !strings.HasPrefix(e.Detail, bad+": ") {
		t.Errorf("error detail should name the file, got %v", err)
	}
}

func TestPatchDocuments(t *testing.T) {
	prev := vdom.Ul(vdom.ID("l"), vdom.Li(vdom.Key("a"), "a"), vdom.Li(vdom.Key("b"), "b"), vdom.Li(vdom.Key("c"), "c"))
	next := vdom.Ul(vdom.Li(vdom.Key("c"), "c"), vdom.Li(vdom.Key("a"), "A"), vdom.Li(vdom.Key("d"), vdom.Class("new"), "d"))
	patches := vdom.Diff(prev, next)

	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodePatches(&buf, patches, f); err != nil {
				t.Fatalf("EncodePatches: %v", err)
			}
			got, err := DecodePatches(&buf, f)
			if err != nil {
				t.Fatalf("DecodePatches: %v", err)
			}
			if diff := cmp.Diff(describe(patches), describe(got)); diff != "" {
				t.Errorf("patch mismatch (-want +got):\n%s", diff)
			}
			for i := range patches {
				for j := range patches[i].Nodes {
					if !vdom.Equal(patches[i].Nodes[j], got[i].Nodes[j]) {
						t.Errorf("patch %d node %d differs", i, j)
					}
				}
			}
		})
	}
}

func TestPatchDocumentJSONShape(t *testing.T) {
	var buf bytes.Buffer
	patches := []vdom.Patch{{Op: vdom.MoveBeforeNode, Path: vdom.NewTreePath(0), Tag: "li", NodePaths: []vdom.TreePath{vdom.NewTreePath(2)}}}
	if err := EncodePatches(&buf, patches, FormatJSON); err != nil {
		t.Fatal(err)
	}
	want := `[
  {
    "op": "MoveBeforeNode",
    "path": [
      0
    ],
    "tag": "li",
    "node_paths": [
      [
        2
      ]
    ]
  }
]
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePatchesUnknownOp(t *testing.T) {
	_, err := DecodePatches(strings.NewReader(`[{"op": "Explode", "path": []}]`), FormatJSON)
	if !errors.Is(err, errors.CodeUnreadableInput) {
		t.Errorf("got %v, want E300", err)
	}
}

func TestDecodePatchesPathOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"negative path", `[{"op": "RemoveNode", "path": [-1]}]`},
		{"path above uint32", `[{"op": "RemoveNode", "path": [0, 5000000000]}]`},
		{"node path above uint32", `[{"op": "MoveBeforeNode", "path": [0], "node_paths": [[4294967296]]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePatches(strings.NewReader(tt.in), FormatJSON)
			if !errors.Is(err, errors.CodeUnreadableInput) {
				t.Errorf("got %v, want E300", err)
			}
		})
	}

	patches, err := DecodePatches(strings.NewReader(`[{"op": "RemoveNode", "path": [4294967295]}]`), FormatJSON)
	if err != nil {
		t.Fatalf("largest index rejected: %v", err)
	}
	if got := patches[0].Path.Last(); uint64(got) != vdom.MaxPathIndex {
		t.Errorf("path index = %d, want %d", got, vdom.MaxPathIndex)
	}
}

func describe(patches []vdom.Patch) []string {
	out := make([]string, len(patches))
	for i, p := range patches {
		out[i] = p.String()
	}
	return out
}
