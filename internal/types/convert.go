package types

// ByName maps a primitive type name to its descriptor. Class-typed
// annotations resolve through the program, not here.
func ByName(name string) (Type, bool) {
	switch name {
	case "void":
		return Void, true
	case "bool":
		return Bool, true
	case "i8":
		return I8, true
	case "i16":
		return I16, true
	case "i32":
		return I32, true
	case "i64":
		return I64, true
	case "isize":
		return Isize, true
	case "u8":
		return U8, true
	case "u16":
		return U16, true
	case "u32":
		return U32, true
	case "u64":
		return U64, true
	case "usize":
		return Usize, true
	case "f32":
		return F32, true
	case "f64":
		return F64, true
	default:
		return Void, false
	}
}

// AssignableTo reports whether a value of type t can be implicitly
// converted to target without an explicit cast. The conversion itself is
// always emittable; this only gates the diagnostic.
func AssignableTo(r *Registry, t, target Type, tgt Target) bool {
	if t == target {
		return true
	}
	if t.Reference() || target.Reference() {
		if t.Reference() && target.Reference() {
			return r != nil && r.Extends(t.Class, target.Class)
		}
		// A reference is a pointer-width integer underneath; allow the
		// unwrapped direction only.
		return t.Reference() && target.Integer() && !target.Small() &&
			target.Size(tgt) >= tgt.PointerBits()
	}
	if t.FunctionRef() || target.FunctionRef() {
		if t.FunctionRef() && target.FunctionRef() {
			st, _ := r.Signature(t.Signature)
			su, _ := r.Signature(target.Signature)
			return st.Equals(su)
		}
		return false
	}
	switch {
	case t.Integer() && target.Integer():
		ts, us := t.Size(tgt), target.Size(tgt)
		if us > ts {
			// Widening; a signed source needs a signed destination so
			// sign extension is meaningful.
			return !t.Signed() || target.Signed()
		}
		if us == ts {
			return t.Signed() == target.Signed()
		}
		return false
	case t.Integer() && target.Float():
		if target.Kind == KindF32 {
			return t.Size(tgt) <= 16 // f32 mantissa holds all sub-word ints
		}
		return t.Size(tgt) <= 32
	case t.Float() && target.Float():
		return target.Kind == KindF64 || t.Kind == KindF32
	default:
		return false
	}
}

// CommonCompatible unifies the operand types of a binary expression.
// signednessMatters is set for operators whose opcode splits on sign
// (division, remainder, ordered comparison, right shift).
func CommonCompatible(left, right Type, signednessMatters bool, tgt Target) (Type, bool) {
	if left == right {
		return left, true
	}
	if left.Kind == KindVoid || right.Kind == KindVoid {
		return Void, false
	}
	// Mixed float: the wider float wins.
	if left.Float() || right.Float() {
		if left.Float() && right.Float() {
			if left.Kind == KindF64 || right.Kind == KindF64 {
				return F64, true
			}
			return F32, true
		}
		if left.Float() {
			return left, true
		}
		return right, true
	}
	// Both integers.
	ls, rs := left.Size(tgt), right.Size(tgt)
	if ls == rs {
		if left.Signed() == right.Signed() {
			// Same shape, different nominal kind (e.g. u32 vs usize on
			// wasm32): prefer the left operand.
			return left, true
		}
		if signednessMatters && !left.Small() && !right.Small() {
			return Void, false
		}
		if left.Signed() {
			return right, true
		}
		return left, true
	}
	if ls > rs {
		return left, true
	}
	return right, true
}

// FitsIn reports whether the integer literal value is representable in t.
func FitsIn(value int64, t Type, tgt Target) bool {
	switch t.Kind {
	case KindBool:
		return value == 0 || value == 1
	case KindI8:
		return value >= -128 && value <= 127
	case KindI16:
		return value >= -32768 && value <= 32767
	case KindI32:
		return value >= -2147483648 && value <= 2147483647
	case KindI64:
		return true
	case KindIsize:
		if tgt.Is64() {
			return true
		}
		return value >= -2147483648 && value <= 2147483647
	case KindU8:
		return value >= 0 && value <= 0xff
	case KindU16:
		return value >= 0 && value <= 0xffff
	case KindU32:
		return value >= 0 && value <= 0xffffffff
	case KindU64:
		return value >= 0
	case KindUsize:
		if t.Reference() {
			return false
		}
		if tgt.Is64() {
			return value >= 0
		}
		return value >= 0 && value <= 0xffffffff
	default:
		return false
	}
}
