// Package ast holds the resolved syntax tree the frontend hands to the
// lowering core. Nodes are tagged variants: a Kind plus a kind-specific
// payload, dispatched by matching the tag at use sites.
//
// The tree is "resolved" in the sense that identifier references carry the
// internal name of their target element where the frontend could bind them,
// and declarations carry the internal name under which the program model
// registers them. The core never performs name lookup by scope walking.
package ast
