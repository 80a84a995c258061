// Package document reads graph documents written in CUE and builds the
// graph they describe.
//
// A document declares named nodes, links between their sockets and the
// root nodes to compile:
//
//	nodes: {
//		a:   {kind: "value", type: "Float"}
//		v:   {kind: "value", type: "Vec3"}
//		mul: {kind: "math", op: "mul", type: "Vec3",
//			inputs: [{name: "lhs", optional: true, default: 2, default_type: "Float"}, {name: "rhs"}]}
//	}
//	links: [{from: "v.out", to: "mul.rhs"}]
//	roots: ["mul"]
//
// Nodes get ids in declaration order, so the same document always builds
// the same graph.
package document

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/shadegraph/internal/graph"
)

// Document is a loaded graph together with the names its nodes were
// declared under.
type Document struct {
	Graph *graph.Store
	Roots []graph.NodeID

	ids   map[string]graph.NodeID
	names map[graph.NodeID]string
	order []string
}

// LoadFile reads and builds the document at path.
func LoadFile(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("graph document not found: %s", path)}
	}
	if err != nil {
		return nil, &Error{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return Parse(src, path)
}

// LoadDir loads every CUE file of the package in dir as one document, so a
// graph can be split across files.
func LoadDir(dir string) (*Document, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &Error{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &Error{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, &Error{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return FromValue(v)
}

// Load reads path as a single file or, when it is a directory, as a CUE
// package.
func Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("graph document not found: %s", path)}
	}
	if err != nil {
		return nil, &Error{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// Parse builds a document from CUE source. filename is used for positions.
func Parse(src []byte, filename string) (*Document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, &Error{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return FromValue(v)
}

// FromValue builds a document from an evaluated CUE value.
func FromValue(v cue.Value) (*Document, error) {
	doc := &Document{
		Graph: graph.New(),
		ids:   make(map[string]graph.NodeID),
		names: make(map[graph.NodeID]string),
	}

	if err := doc.addNodes(v.LookupPath(cue.ParsePath("nodes"))); err != nil {
		return nil, err
	}
	if err := doc.addLinks(v.LookupPath(cue.ParsePath("links"))); err != nil {
		return nil, err
	}

	rootsVal := v.LookupPath(cue.ParsePath("roots"))
	if rootsVal.Exists() {
		var names []string
		if err := rootsVal.Decode(&names); err != nil {
			return nil, errorf(ErrCodeGeneric, rootsVal.Pos(), "roots must be a list of node names: %v", err)
		}
		roots, err := doc.ResolveRoots(names)
		if err != nil {
			return nil, err
		}
		doc.Roots = roots
	}
	return doc, nil
}

// ResolveRoots maps node names to ids.
func (d *Document) ResolveRoots(names []string) ([]graph.NodeID, error) {
	roots := make([]graph.NodeID, 0, len(names))
	for _, name := range names {
		id, ok := d.ids[name]
		if !ok {
			return nil, &Error{Code: ErrCodeUnknownNode, Message: fmt.Sprintf("root %q is not a declared node", name)}
		}
		roots = append(roots, id)
	}
	return roots, nil
}

// NodeID returns the id of the node declared as name.
func (d *Document) NodeID(name string) (graph.NodeID, bool) {
	id, ok := d.ids[name]
	return id, ok
}

// NodeName returns the declared name of id, or its id string when unnamed.
func (d *Document) NodeName(id graph.NodeID) string {
	if name, ok := d.names[id]; ok {
		return name
	}
	return id.String()
}

// NodeNames returns every node name in declaration order.
func (d *Document) NodeNames() []string {
	return append([]string(nil), d.order...)
}
