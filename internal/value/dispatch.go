package value

// operatorCallable resolves an operator tag to a Callable for the kinds
// that carry user-defined operator tables (spec.md §4.2 points 3-5).
// Primitive kinds implement their operators directly in numeric.go /
// equality.go / concatOperator and never reach here.
func (v Value) operatorCallable(tag OperatorTag) (Callable, bool) {
	switch v.kind {
	case KindStandard:
		return v.standard.Class.LookupOperator(tag)
	case KindUnion:
		return v.union.Class.LookupOperator(tag)
	case KindCustom:
		return v.custom.Operator(tag)
	default:
		return nil, false
	}
}

// Index implements spec.md §4.2's `Variable.index(name) -> Variable`: name
// is either an operator tag spelled as a bare word (resolved by the caller
// before reaching here — internal/vm maps opcodes to OperatorTag) or an
// attribute/method string. Resolution order follows the spec exactly:
// primitive values first, then Option, then Standard, then Union, then
// Custom.
func (v Value) Index(name string) (Value, error) {
	if v.IsOption() {
		return v.indexOption(name)
	}
	switch v.kind {
	case KindStandard:
		return v.indexStandard(name)
	case KindUnion:
		return v.indexUnion(name)
	case KindCustom:
		return v.indexCustom(name)
	default:
		return v.indexPrimitive(name)
	}
}

// indexPrimitive covers spec.md §4.2 point 1. Primitives don't carry a
// user-extensible method table; the only names meaningful here are the
// handful of built-in methods every value supports (str/repr), surfaced as
// native bound functions, plus the add operator for strings, lists and
// tuples (concatOperator).
func (v Value) indexPrimitive(name string) (Value, error) {
	switch name {
	case "str":
		return FunctionV(NewNativeFunction("str", func(args []Value) (Value, error) {
			return Str(Repr(v, false)), nil
		})), nil
	case "repr":
		return FunctionV(NewNativeFunction("repr", func(args []Value) (Value, error) {
			return Str(Repr(v, true)), nil
		})), nil
	case OpAdd.String():
		if c, ok := concatOperator(v); ok {
			return MethodV(NewMethod(v, NewNativeFunction(name, c))), nil
		}
	}
	return Value{}, valueErrorf("unsupported operator %q on %s", name, v.kind)
}

// concatOperator covers the built-in container kinds' "+" semantics
// (spec.md §4.5: string/list/tuple concatenation) — the one arithmetic
// operator primitives implement outside numeric.go's numeric tower, since
// it has no numeric-tower fast path in internal/vm/arith.go to fall back
// on.
func concatOperator(v Value) (Callable, bool) {
	switch v.kind {
	case KindString:
		return func(args []Value) (Value, error) {
			if len(args) != 2 || args[1].kind != KindString {
				return Value{}, valueErrorf("+ expects a string operand")
			}
			return StringV(args[0].str.Concat(args[1].str)), nil
		}, true
	case KindList:
		return func(args []Value) (Value, error) {
			if len(args) != 2 || args[1].kind != KindList {
				return Value{}, valueErrorf("+ expects a list operand")
			}
			out := make([]Value, 0, len(args[0].list.Elems)+len(args[1].list.Elems))
			out = append(out, args[0].list.Elems...)
			out = append(out, args[1].list.Elems...)
			return ListV(NewList(out)), nil
		}, true
	case KindTuple:
		return func(args []Value) (Value, error) {
			if len(args) != 2 || args[1].kind != KindTuple {
				return Value{}, valueErrorf("+ expects a tuple operand")
			}
			out := make([]Value, 0, len(args[0].tuple.Elems)+len(args[1].tuple.Elems))
			out = append(out, args[0].tuple.Elems...)
			out = append(out, args[1].tuple.Elems...)
			return TupleV(NewTuple(out)), nil
		}, true
	default:
		return nil, false
	}
}

// indexOption implements spec.md §4.2 point 2: Option exposes str/repr plus
// map/flatMap, both of which unwrap one depth of nesting and apply the
// supplied callable; map re-wraps the result at the same depth, while
// flatMap returns the callable's result as it is.
func (v Value) indexOption(name string) (Value, error) {
	switch name {
	case "str":
		return FunctionV(NewNativeFunction("str", func(args []Value) (Value, error) {
			return Str(Repr(v, false)), nil
		})), nil
	case "repr":
		return FunctionV(NewNativeFunction("repr", func(args []Value) (Value, error) {
			return Str(Repr(v, true)), nil
		})), nil
	case "map":
		depth := v.optDepth
		some, hasSome := v.OptSome()
		return FunctionV(NewNativeFunction("map", func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, valueErrorf("map expects exactly one argument")
			}
			if !hasSome {
				return NoneAt(depth), nil
			}
			r, err := callValue(args[0], []Value{some})
			if err != nil {
				return Value{}, err
			}
			return MakeOption(depth, &r), nil
		})), nil
	case "flatMap":
		depth := v.optDepth
		some, hasSome := v.OptSome()
		return FunctionV(NewNativeFunction("flatMap", func(args []Value) (Value, error) {
			if len(args) != 1 {
				return Value{}, valueErrorf("flatMap expects exactly one argument")
			}
			if !hasSome {
				return NoneAt(depth), nil
			}
			r, err := callValue(args[0], []Value{some})
			if err != nil {
				return Value{}, err
			}
			return r, nil
		})), nil
	default:
		return Value{}, valueErrorf("unsupported operator %q on option", name)
	}
}

// indexStandard implements spec.md §4.2 point 3: operators and methods
// (including inherited supers) resolve through the class tables; properties
// invoke their getter eagerly rather than returning a bound method.
func (v Value) indexStandard(name string) (Value, error) {
	class := v.standard.Class
	if attr, ok := v.standard.GetAttr(name); ok {
		return attr, nil
	}
	if getter, ok := class.LookupProperty(name); ok {
		return getter([]Value{v})
	}
	if m, ok := class.LookupMethod(name); ok {
		return MethodV(NewMethod(v, NewNativeFunction(name, m))), nil
	}
	if tag, ok := OperatorTagByName(name); ok {
		if op, ok := class.LookupOperator(tag); ok {
			return MethodV(NewMethod(v, NewNativeFunction(name, op))), nil
		}
	}
	return Value{}, valueErrorf("%s has no attribute %q", class.Name, name)
}

// indexUnion implements spec.md §4.2 point 4: same resolution as Standard,
// plus the active variant's payload is reachable by its variant name.
func (v Value) indexUnion(name string) (Value, error) {
	if attr, ok := v.union.GetAttr(name); ok {
		return attr, nil
	}
	class := v.union.Class
	if getter, ok := class.LookupProperty(name); ok {
		return getter([]Value{v})
	}
	if m, ok := class.LookupMethod(name); ok {
		return MethodV(NewMethod(v, NewNativeFunction(name, m))), nil
	}
	if tag, ok := OperatorTagByName(name); ok {
		if op, ok := class.LookupOperator(tag); ok {
			return MethodV(NewMethod(v, NewNativeFunction(name, op))), nil
		}
	}
	return Value{}, valueErrorf("%s has no attribute %q", class.Name, name)
}

// indexCustom implements spec.md §4.2 point 5: dispatch straight to the
// object's trait method, trying an attribute first and then an operator.
func (v Value) indexCustom(name string) (Value, error) {
	if attr, ok := v.custom.Attr(name); ok {
		return attr, nil
	}
	if tag, ok := OperatorTagByName(name); ok {
		if op, ok := v.custom.Operator(tag); ok {
			return MethodV(NewMethod(v, NewNativeFunction(name, op))), nil
		}
	}
	return Value{}, valueErrorf("%s has no attribute %q", v.custom.ClassName(), name)
}

// callValue invokes a callable Value (Function or Method) with args,
// prepending the receiver for bound methods. internal/vm's bytecode-backed
// Functions are invoked here only through their Native slot; calling an
// unresolved bytecode Function from within internal/value (e.g. from a
// user-supplied `map` callback) is only possible when the VM has bound a
// native trampoline, which it always does before handing such values back
// to this package.
func callValue(callee Value, args []Value) (Value, error) {
	switch callee.kind {
	case KindFunction:
		if callee.fn.Native == nil {
			return Value{}, valueErrorf("cannot invoke unbound bytecode function %q outside the interpreter", callee.fn.Name)
		}
		return callee.fn.Native(args)
	case KindMethod:
		full := append([]Value{callee.method.Receiver}, args...)
		if callee.method.Fn.Native == nil {
			return Value{}, valueErrorf("cannot invoke unbound bytecode method %q outside the interpreter", callee.method.Fn.Name)
		}
		return callee.method.Fn.Native(full)
	default:
		return Value{}, valueErrorf("value of kind %s is not callable", callee.kind)
	}
}
