// Package value implements the tagged value representation described in
// spec.md §3: the Value sum type, its numeric tower, the hash-container
// wrappers, the built-in containers, standard/union/custom classes, the
// built-in exception classes, and the attribute/operator dispatch glue.
// Everything that would otherwise need to import Value lives here too (see
// SPEC_FULL.md §3's package-consolidation note) to avoid an import cycle.
package value

// Kind tags the variant a non-Option Value holds. It mirrors the "Normal"
// branch of spec.md §3.1's Value sum type one-for-one.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindChar
	KindBigint
	KindDecimal
	KindString
	KindTuple
	KindList
	KindArray
	KindBytes
	KindRange
	KindSlice
	KindDict
	KindSet
	KindType
	KindFunction
	KindMethod
	KindStandard
	KindUnion
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindChar:
		return "Char"
	case KindBigint:
		return "Bigint"
	case KindDecimal:
		return "Decimal"
	case KindString:
		return "String"
	case KindTuple:
		return "Tuple"
	case KindList:
		return "List"
	case KindArray:
		return "Array"
	case KindBytes:
		return "Bytes"
	case KindRange:
		return "Range"
	case KindSlice:
		return "Slice"
	case KindDict:
		return "Dict"
	case KindSet:
		return "Set"
	case KindType:
		return "Type"
	case KindFunction:
		return "Function"
	case KindMethod:
		return "Method"
	case KindStandard:
		return "Standard"
	case KindUnion:
		return "Union"
	case KindCustom:
		return "Custom"
	default:
		return "?"
	}
}

// OperatorTag names an operator reachable through the uniform dispatch
// protocol of spec.md §4.2, used both for synthesized primitive bound
// methods and for class operator tables.
type OperatorTag int

const (
	OpStr OperatorTag = iota
	OpRepr
	OpBool
	OpInt
	OpHash
	OpEquals
	OpLessThan
	OpGreaterThan
	OpLessEqual
	OpGreaterEqual
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpUMinus
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpLShift
	OpRShift
	OpGetItem
	OpSetItem
	OpDelItem
	OpContains
	OpIter
	OpNext
	OpEnter
	OpExit
	OpCall
)

func (op OperatorTag) String() string {
	names := [...]string{
		"str", "repr", "bool", "int", "hash", "equals", "lessThan",
		"greaterThan", "lessEqual", "greaterEqual", "add", "sub", "mul",
		"div", "floorDiv", "mod", "pow", "uMinus", "bitAnd", "bitOr",
		"bitXor", "bitNot", "lShift", "rShift", "getItem", "setItem",
		"delItem", "contains", "iter", "next", "enter", "exit", "call",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

var operatorNameIndex map[string]OperatorTag

func init() {
	operatorNameIndex = make(map[string]OperatorTag, OpCall+1)
	for tag := OpStr; tag <= OpCall; tag++ {
		operatorNameIndex[tag.String()] = tag
	}
}

// OperatorTagByName reverses OperatorTag.String, used by dispatch.go when a
// plain attribute-style name turns out to name an operator (e.g. looking up
// "add" on a class that only defines it as an operator, not a method), and
// by internal/loader when binding a class record's operator-table entries.
func OperatorTagByName(name string) (OperatorTag, bool) {
	tag, ok := operatorNameIndex[name]
	return tag, ok
}

// Callable is the uniform shape every bound operator/method/function value
// reduces to once resolved by Index (spec.md §4.2: "callable(args) ->
// FnResult"). It is implemented either natively in Go or by the
// interpreter's own call machinery (internal/vm wires the latter when it
// builds class descriptors from a loaded module, without value needing to
// import vm).
type Callable func(args []Value) (Value, error)
