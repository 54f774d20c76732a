package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Declarations
	DeclInfo                    Code = 4000
	DeclMissingTypeOrInit       Code = 4001
	DeclMutableGlobalImport     Code = 4002
	DeclConstNonConstantInit    Code = 4003
	DeclEnumValueNotConstant    Code = 4004
	DeclDuplicateLocal          Code = 4005
	DeclGenericWithoutTypeArgs  Code = 4006
	DeclVoidInitializer         Code = 4007
	DeclMutableGlobalExport     Code = 4008
	DeclFunctionBodyMissing     Code = 4009
	DeclFunctionBodyUnexpected  Code = 4010
	DeclConstMissingInitializer Code = 4011

	// Types and conversions
	TypeInfo            Code = 5000
	TypeNotAssignable   Code = 5001
	TypeOperatorInvalid Code = 5002
	TypeVoidValue       Code = 5003
	TypeNotCallable     Code = 5004
	TypeUnexpected      Code = 5005

	// Control flow
	FlowInfo                Code = 6000
	FlowNotAllPathsReturn   Code = 6001
	FlowBreakOutsideLoop    Code = 6002
	FlowContinueOutsideLoop Code = 6003
	FlowLabeledUnsupported  Code = 6004

	// Expression and call lowering
	LowerInfo                 Code = 7000
	LowerNotImplemented       Code = 7001
	LowerUnsupportedBuiltin   Code = 7002
	LowerArityMismatch        Code = 7003
	LowerRestUnsupported      Code = 7004
	LowerThisMismatch         Code = 7005
	LowerAssignToConstant     Code = 7006
	LowerAssignToReadonly     Code = 7007
	LowerSetterMissing        Code = 7008
	LowerIndexedSetMissing    Code = 7009
	LowerForwardEnumReference Code = 7010
	LowerUnresolved           Code = 7011
	LowerOperatorMissing      Code = 7012
)

func (c Code) String() string {
	switch {
	case c >= 7000:
		return fmt.Sprintf("LOW%04d", uint16(c))
	case c >= 6000:
		return fmt.Sprintf("FLO%04d", uint16(c))
	case c >= 5000:
		return fmt.Sprintf("TYP%04d", uint16(c))
	case c >= 4000:
		return fmt.Sprintf("DCL%04d", uint16(c))
	default:
		return fmt.Sprintf("COR%04d", uint16(c))
	}
}
