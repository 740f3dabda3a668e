// Package canvasop defines the reference applier set for a shared-canvas
// document type. The engine treats operation semantics as pluggable; this
// package is the document-type definition the CLI and the scenario
// harness run against.
//
// Canvas state shape:
//
//	{
//	  "fields": { <key>: <value>, ... },
//	  "nodes":  { <node id>: { ... }, ... }
//	}
//
// All appliers are pure: they mutate only the state clone handed to them
// and depend on nothing but state and args.
package canvasop

import (
	"fmt"

	"github.com/roach88/tabula/internal/engine"
	"github.com/roach88/tabula/internal/model"
)

// Operation kinds registered by this document type.
const (
	OpSetField   = "set_field"
	OpPutNode    = "put_node"
	OpPatchNode  = "patch_node"
	OpRemoveNode = "remove_node"
)

// NewRegistry returns an applier registry populated with the canvas
// operations.
func NewRegistry() *engine.Registry {
	reg := engine.NewRegistry()
	reg.MustRegister(OpSetField, applySetField)
	reg.MustRegister(OpPutNode, applyPutNode)
	reg.MustRegister(OpPatchNode, applyPatchNode)
	reg.MustRegister(OpRemoveNode, applyRemoveNode)
	return reg
}

// section returns state[name] as an Object, creating it if absent.
func section(state model.Object, name string) (model.Object, error) {
	v, ok := state[name]
	if !ok {
		sec := model.Object{}
		state[name] = sec
		return sec, nil
	}
	sec, ok := v.(model.Object)
	if !ok {
		return nil, fmt.Errorf("state %q is not an object", name)
	}
	return sec, nil
}

func argString(args model.Object, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing arg %q", key)
	}
	s, ok := v.(model.String)
	if !ok {
		return "", fmt.Errorf("arg %q must be a string", key)
	}
	if s == "" {
		return "", fmt.Errorf("arg %q must be non-empty", key)
	}
	return string(s), nil
}

// applySetField sets one top-level field on the canvas.
// Args: {"key": string, "value": any}.
func applySetField(state, args model.Object) (model.Object, error) {
	key, err := argString(args, "key")
	if err != nil {
		return nil, err
	}
	value, ok := args["value"]
	if !ok {
		return nil, fmt.Errorf("missing arg %q", "value")
	}

	fields, err := section(state, "fields")
	if err != nil {
		return nil, err
	}
	fields[key] = value
	return state, nil
}

// applyPutNode inserts a new node. Inserting over an existing node is an
// apply error - use patch_node to change one.
// Args: {"id": string, "node": object}.
func applyPutNode(state, args model.Object) (model.Object, error) {
	id, err := argString(args, "id")
	if err != nil {
		return nil, err
	}
	nodeVal, ok := args["node"]
	if !ok {
		return nil, fmt.Errorf("missing arg %q", "node")
	}
	node, ok := nodeVal.(model.Object)
	if !ok {
		return nil, fmt.Errorf("arg %q must be an object", "node")
	}

	nodes, err := section(state, "nodes")
	if err != nil {
		return nil, err
	}
	if _, exists := nodes[id]; exists {
		return nil, fmt.Errorf("node %q already exists", id)
	}
	nodes[id] = node
	return state, nil
}

// applyPatchNode merges fields into an existing node. Patching a node
// that does not exist (e.g. already removed by a concurrent actor) is an
// apply error surfaced to the caller, not retried.
// Args: {"id": string, "set": object}.
func applyPatchNode(state, args model.Object) (model.Object, error) {
	id, err := argString(args, "id")
	if err != nil {
		return nil, err
	}
	setVal, ok := args["set"]
	if !ok {
		return nil, fmt.Errorf("missing arg %q", "set")
	}
	set, ok := setVal.(model.Object)
	if !ok {
		return nil, fmt.Errorf("arg %q must be an object", "set")
	}

	nodes, err := section(state, "nodes")
	if err != nil {
		return nil, err
	}
	nodeVal, exists := nodes[id]
	if !exists {
		return nil, fmt.Errorf("node %q does not exist", id)
	}
	node, ok := nodeVal.(model.Object)
	if !ok {
		return nil, fmt.Errorf("node %q is not an object", id)
	}

	for k, v := range set {
		node[k] = v
	}
	return state, nil
}

// applyRemoveNode deletes a node. Removing a missing node is an apply
// error so a stale caller learns its view is behind.
// Args: {"id": string}.
func applyRemoveNode(state, args model.Object) (model.Object, error) {
	id, err := argString(args, "id")
	if err != nil {
		return nil, err
	}

	nodes, err := section(state, "nodes")
	if err != nil {
		return nil, err
	}
	if _, exists := nodes[id]; !exists {
		return nil, fmt.Errorf("node %q does not exist", id)
	}
	delete(nodes, id)
	return state, nil
}
