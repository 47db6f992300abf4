// Package bytecode defines the instruction set of the virtual machine:
// the Opcode enum and the fixed-width operand sizing table that
// internal/vm's fetch-decode loop consumes (spec.md §4.1).
package bytecode

// Opcode is a single-byte instruction tag.
type Opcode byte

const (
	// Stack manipulation
	Nop Opcode = iota
	LoadNull
	LoadConst     // (k uint16): push constant pool entry k
	LoadValue     // (slot uint16): push local slot
	LoadDot       // (const uint16): push value.index(name) where name is a string constant
	LoadSubscript // (argc uint8): pop argc indices + receiver, push receiver[indices]
	LoadOp        // (op uint8): resolve operator tag op on top-of-stack
	PopTop
	DupTop
	Swap2
	Swap3
	SwapN        // (n uint8): reverse the order of the top n stack entries
	Store        // (slot uint16): pop into local slot
	StoreSubscript
	StoreAttr    // (name-const uint16)
	SwapStack    // (a uint8, b uint8): swap stack positions a and b
	DupTop2
	DupTopN      // (n uint8)
	SwapDyn

	// Arithmetic / logical (fixed arity, zero operands)
	Plus
	Minus
	Times
	Divide
	FloorDiv
	Mod
	Subscript
	Power
	LBitshift
	RBitshift
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	Compare
	DelSubscript
	UMinus
	BitwiseNot
	BoolAnd
	BoolOr
	BoolNot
	BoolXor
	Identical
	Instanceof
	Equal
	LessThan
	GreaterThan
	LessEqual
	GreaterEqual
	Contains

	// Generic operator call
	CallOp // (op uint8, argc uint8)

	// Tuple
	PackTuple // (n uint16)
	UnpackTuple
	PackIterable
	UnpackIterable

	// Jumps (absolute 4-byte targets)
	Jump
	JumpFalse
	JumpTrue
	JumpNN
	JumpNull

	// Calls / returns
	CallMethod   // (name-const uint16, argc uint8)
	CallTos      // (argc uint8)
	CallFunction // (fn uint16, argc uint8)
	TailMethod   // (name-const uint16, argc uint8)
	TailTos      // (argc uint8)
	TailFunction // (fn uint16, argc uint8)
	Return       // (n uint8)
	Yield        // (n uint8)
	SwitchTable  // (tbl uint16)

	// Exceptions
	Throw
	ThrowQuick // (type-const uint16)
	EnterTry   // (handler-pc uint32)
	ExceptN    // (n-types uint8)
	Finally
	EndTry

	// Markers / scopes
	FuncDef  // (fn-const uint16)
	ClassDef // (class-const uint16)
	EndClass

	// Loops and comprehensions
	ForIter     // (target-pc uint32, slot uint16)
	Dotimes     // (target-pc uint32)
	ForParallel // (target-pc uint32, slot uint16)
	ListCreate  // (n uint16)
	SetCreate   // (n uint16)
	DictCreate  // (n uint16)
	ListAdd
	SetAdd
	DictAdd
	MakeSlice
	ListDyn
	SetDyn
	DictDyn

	// Statics
	DoStatic    // (label uint16)
	StoreStatic // (k uint16)
	LoadStatic  // (k uint16)

	// Union / Option
	GetVariant  // (k uint16)
	MakeVariant // (k uint16)
	VariantNo
	MakeOption // (depth uint8)
	IsSome
	UnwrapOption

	// Misc
	LoadFunction // (fn uint16)
	GetType

	opcodeCount
)

// OperandWidths gives the byte width of each opcode's (imm1, imm2), a 0
// meaning that operand is absent. Widths are always in {1, 2, 4} per
// spec.md §4.1.
var OperandWidths = [opcodeCount][2]uint8{
	Nop:       {0, 0},
	LoadNull:  {0, 0},
	LoadConst: {2, 0},
	LoadValue: {2, 0},
	LoadDot:   {2, 0},
	LoadSubscript: {1, 0},
	LoadOp:        {1, 0},
	PopTop:        {0, 0},
	DupTop:        {0, 0},
	Swap2:         {0, 0},
	Swap3:         {0, 0},
	SwapN:         {1, 0},
	Store:         {2, 0},
	StoreSubscript: {0, 0},
	StoreAttr:      {2, 0},
	SwapStack:      {1, 1},
	DupTop2:        {0, 0},
	DupTopN:        {1, 0},
	SwapDyn:        {0, 0},

	Plus: {0, 0}, Minus: {0, 0}, Times: {0, 0}, Divide: {0, 0},
	FloorDiv: {0, 0}, Mod: {0, 0}, Subscript: {0, 0}, Power: {0, 0},
	LBitshift: {0, 0}, RBitshift: {0, 0}, BitwiseAnd: {0, 0},
	BitwiseOr: {0, 0}, BitwiseXor: {0, 0}, Compare: {0, 0},
	DelSubscript: {0, 0}, UMinus: {0, 0}, BitwiseNot: {0, 0},
	BoolAnd: {0, 0}, BoolOr: {0, 0}, BoolNot: {0, 0}, BoolXor: {0, 0},
	Identical: {0, 0}, Instanceof: {0, 0}, Equal: {0, 0},
	LessThan: {0, 0}, GreaterThan: {0, 0}, LessEqual: {0, 0},
	GreaterEqual: {0, 0}, Contains: {0, 0},

	CallOp: {1, 1},

	PackTuple:       {2, 0},
	UnpackTuple:     {0, 0},
	PackIterable:    {0, 0},
	UnpackIterable:  {0, 0},

	Jump:      {4, 0},
	JumpFalse: {4, 0},
	JumpTrue:  {4, 0},
	JumpNN:    {4, 0},
	JumpNull:  {4, 0},

	CallMethod:   {2, 1},
	CallTos:      {1, 0},
	CallFunction: {2, 1},
	TailMethod:   {2, 1},
	TailTos:      {1, 0},
	TailFunction: {2, 1},
	Return:       {1, 0},
	Yield:        {1, 0},
	SwitchTable:  {2, 0},

	Throw:      {0, 0},
	ThrowQuick: {2, 0},
	EnterTry:   {4, 0},
	ExceptN:    {1, 0},
	Finally:    {0, 0},
	EndTry:     {0, 0},

	FuncDef:  {2, 0},
	ClassDef: {2, 0},
	EndClass: {0, 0},

	ForIter:     {4, 2},
	Dotimes:     {4, 0},
	ForParallel: {4, 2},
	ListCreate:  {2, 0},
	SetCreate:   {2, 0},
	DictCreate:  {2, 0},
	ListAdd:     {0, 0},
	SetAdd:      {0, 0},
	DictAdd:     {0, 0},
	MakeSlice:   {0, 0},
	ListDyn:     {0, 0},
	SetDyn:      {0, 0},
	DictDyn:     {0, 0},

	DoStatic:    {2, 0},
	StoreStatic: {2, 0},
	LoadStatic:  {2, 0},

	GetVariant:   {2, 0},
	MakeVariant:  {2, 0},
	VariantNo:    {0, 0},
	MakeOption:   {1, 0},
	IsSome:       {0, 0},
	UnwrapOption: {0, 0},

	LoadFunction: {2, 0},
	GetType:      {0, 0},
}

// Size returns the total encoded instruction size in bytes, including the
// one-byte opcode tag itself.
func (op Opcode) Size() int {
	w := OperandWidths[op]
	return 1 + int(w[0]) + int(w[1])
}

var names = [opcodeCount]string{
	Nop: "Nop", LoadNull: "LoadNull", LoadConst: "LoadConst",
	LoadValue: "LoadValue", LoadDot: "LoadDot", LoadSubscript: "LoadSubscript",
	LoadOp: "LoadOp", PopTop: "PopTop", DupTop: "DupTop", Swap2: "Swap2",
	Swap3: "Swap3", SwapN: "SwapN", Store: "Store",
	StoreSubscript: "StoreSubscript", StoreAttr: "StoreAttr",
	SwapStack: "SwapStack", DupTop2: "DupTop2", DupTopN: "DupTopN",
	SwapDyn: "SwapDyn",

	Plus: "Plus", Minus: "Minus", Times: "Times", Divide: "Divide",
	FloorDiv: "FloorDiv", Mod: "Mod", Subscript: "Subscript", Power: "Power",
	LBitshift: "LBitshift", RBitshift: "RBitshift", BitwiseAnd: "BitwiseAnd",
	BitwiseOr: "BitwiseOr", BitwiseXor: "BitwiseXor", Compare: "Compare",
	DelSubscript: "DelSubscript", UMinus: "UMinus", BitwiseNot: "BitwiseNot",
	BoolAnd: "BoolAnd", BoolOr: "BoolOr", BoolNot: "BoolNot",
	BoolXor: "BoolXor", Identical: "Identical", Instanceof: "Instanceof",
	Equal: "Equal", LessThan: "LessThan", GreaterThan: "GreaterThan",
	LessEqual: "LessEqual", GreaterEqual: "GreaterEqual", Contains: "Contains",

	CallOp: "CallOp",

	PackTuple: "PackTuple", UnpackTuple: "UnpackTuple",
	PackIterable: "PackIterable", UnpackIterable: "UnpackIterable",

	Jump: "Jump", JumpFalse: "JumpFalse", JumpTrue: "JumpTrue",
	JumpNN: "JumpNN", JumpNull: "JumpNull",

	CallMethod: "CallMethod", CallTos: "CallTos",
	CallFunction: "CallFunction", TailMethod: "TailMethod",
	TailTos: "TailTos", TailFunction: "TailFunction", Return: "Return",
	Yield: "Yield", SwitchTable: "SwitchTable",

	Throw: "Throw", ThrowQuick: "ThrowQuick", EnterTry: "EnterTry",
	ExceptN: "ExceptN", Finally: "Finally", EndTry: "EndTry",

	FuncDef: "FuncDef", ClassDef: "ClassDef", EndClass: "EndClass",

	ForIter: "ForIter", Dotimes: "Dotimes", ForParallel: "ForParallel",
	ListCreate: "ListCreate", SetCreate: "SetCreate", DictCreate: "DictCreate",
	ListAdd: "ListAdd", SetAdd: "SetAdd", DictAdd: "DictAdd",
	MakeSlice: "MakeSlice", ListDyn: "ListDyn", SetDyn: "SetDyn",
	DictDyn: "DictDyn",

	DoStatic: "DoStatic", StoreStatic: "StoreStatic", LoadStatic: "LoadStatic",

	GetVariant: "GetVariant", MakeVariant: "MakeVariant", VariantNo: "VariantNo",
	MakeOption: "MakeOption", IsSome: "IsSome", UnwrapOption: "UnwrapOption",

	LoadFunction: "LoadFunction", GetType: "GetType",
}

func (op Opcode) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return "Opcode(?)"
}
