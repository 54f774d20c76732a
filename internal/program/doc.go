// Package program is the resolved program model the lowering core consumes:
// symbol tables, type resolution, member resolution, generic instantiation.
//
// Elements are tagged variants sharing a mutable flag cell. The model is
// built by the frontend (or a test fixture, or a decoded snapshot); the
// compiler only mutates compilation-state flags (Compiled, Inlined) and
// function-local bookkeeping. A Program is not safe for concurrent
// mutation; concurrent compilation needs independent Program instances.
package program
