package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Class is the type-level record of a class: its name, instance memory size,
// and base class, all that the numeric side of lowering needs. Members live
// on the program elements.
type Class struct {
	Name string
	Size uint32 // instance size in bytes
	Base ClassID
}

// Registry owns the class and signature arenas. IDs index into the arenas;
// slot 0 of each is a reserved invalid sentinel, which breaks the
// class-signature-class reference cycle by construction.
type Registry struct {
	classes    []Class
	signatures []Signature

	// StringClass, when set, types string literals; otherwise they are
	// plain pointer-width offsets.
	StringClass ClassID
	// ArrayClass, when set, is the generic array prototype used to find
	// the element type of array literals.
	ArrayClass ClassID
}

// NewRegistry constructs a registry with reserved invalid slots.
func NewRegistry() *Registry {
	return &Registry{
		classes:    make([]Class, 1, 16),
		signatures: make([]Signature, 1, 16),
	}
}

// AddClass appends a class to the arena and returns its ID.
func (r *Registry) AddClass(c Class) ClassID {
	raw, err := safecast.Conv[uint32](len(r.classes))
	if err != nil {
		panic(fmt.Errorf("types: class id overflow: %w", err))
	}
	r.classes = append(r.classes, c)
	return ClassID(raw)
}

// Class returns the class record for an ID.
func (r *Registry) Class(id ClassID) (*Class, bool) {
	if id == NoClassID || int(id) >= len(r.classes) {
		return nil, false
	}
	return &r.classes[id], true
}

// MustClass panics on an invalid ID.
func (r *Registry) MustClass(id ClassID) *Class {
	c, ok := r.Class(id)
	if !ok {
		panic("types: invalid ClassID")
	}
	return c
}

// AddSignature appends a signature to the arena and returns its ID.
func (r *Registry) AddSignature(s Signature) SignatureID {
	raw, err := safecast.Conv[uint32](len(r.signatures))
	if err != nil {
		panic(fmt.Errorf("types: signature id overflow: %w", err))
	}
	r.signatures = append(r.signatures, s)
	return SignatureID(raw)
}

// Signature returns the signature for an ID.
func (r *Registry) Signature(id SignatureID) (*Signature, bool) {
	if id == NoSignatureID || int(id) >= len(r.signatures) {
		return nil, false
	}
	return &r.signatures[id], true
}

// MustSignature panics on an invalid ID.
func (r *Registry) MustSignature(id SignatureID) *Signature {
	s, ok := r.Signature(id)
	if !ok {
		panic("types: invalid SignatureID")
	}
	return s
}

// Extends reports whether sub is the same class as base or inherits from it.
func (r *Registry) Extends(sub, base ClassID) bool {
	seen := 0
	for sub != NoClassID && seen < 64 {
		if sub == base {
			return true
		}
		c, ok := r.Class(sub)
		if !ok {
			return false
		}
		sub = c.Base
		seen++
	}
	return false
}

// StringType returns the type of string literals: the string class when the
// program declares one, pointer width otherwise.
func (r *Registry) StringType() Type {
	if r.StringClass != NoClassID {
		return MakeClass(r.StringClass)
	}
	return Usize
}
