package value

// Built-in exception classes (spec.md §7): each is a standard class with a
// single "message" instance variable and a default `str` operator
// returning that message. internal/vm raises these by name when a native
// operation fails for one of the listed reasons (division by zero,
// out-of-range indexing, and so on); user code can also subclass or
// construct them directly once the loader resolves the class constant.
var (
	ArithmeticErrorClass = newBuiltinExceptionClass("ArithmeticError")
	IndexErrorClass      = newBuiltinExceptionClass("IndexError")
	KeyErrorClass        = newBuiltinExceptionClass("KeyError")
	ValueErrorClass      = newBuiltinExceptionClass("ValueError")
	TypeErrorClass       = newBuiltinExceptionClass("TypeError")
	IoErrorClass         = newBuiltinExceptionClass("IoError")
	InvalidStateClass    = newBuiltinExceptionClass("InvalidState")
	StopIterationClass   = newBuiltinExceptionClass("StopIteration")
)

func newBuiltinExceptionClass(name string) *Class {
	c := NewClass(ClassStandard, name)
	c.InstanceVars = []string{"message"}
	c.Operators[OpStr] = func(args []Value) (Value, error) {
		recv := args[0]
		msg, _ := recv.standard.GetAttr("message")
		if msg.kind != KindString {
			return Str(""), nil
		}
		return msg, nil
	}
	return c
}

// NewException constructs an instance of one of the built-in exception
// classes with the given message (spec.md §7: "a message attribute").
func NewException(class *Class, message string) *StandardInstance {
	inst := NewStandardInstance(class)
	inst.SetAttr("message", Str(message))
	return inst
}

// exceptionKindToClass maps the DispatchError.Kind strings produced
// throughout this package (numeric.go, equality.go, array.go, ...) to the
// built-in exception class internal/vm should raise. It is exported as a
// function rather than a map literal so dispatch.go's error constructors
// and this table can never drift out of sync silently.
func ExceptionClassForKind(kind string) *Class {
	switch kind {
	case "arithmetic_error":
		return ArithmeticErrorClass
	case "index_error":
		return IndexErrorClass
	case "key_error":
		return KeyErrorClass
	case "value_error":
		return ValueErrorClass
	case "type_error":
		return TypeErrorClass
	case "io_error":
		return IoErrorClass
	case "invalid_state":
		return InvalidStateClass
	case "stop_iteration":
		return StopIterationClass
	default:
		return ValueErrorClass
	}
}
