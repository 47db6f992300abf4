package value

// Function is a callable value: either a reference into a loaded module's
// function table (FileID/FuncID, resolved by internal/loader's post-load
// fixup — spec.md §4.9) or a native function supplied by the embedder
// (spec.md §6.3). internal/vm is the only package that knows how to
// actually invoke one; Function itself is inert data plus identity.
type Function struct {
	Name   string
	FileID int
	FuncID int
	Native Callable // non-nil for native/builtin functions
	id     uint32
}

func NewBytecodeFunction(name string, fileID, funcID int) *Function {
	return &Function{Name: name, FileID: fileID, FuncID: funcID, id: nextID()}
}

func NewNativeFunction(name string, fn Callable) *Function {
	return &Function{Name: name, Native: fn, id: nextID()}
}

func (f *Function) IsNative() bool { return f.Native != nil }

// Method is a bound-method value: a receiver plus the Function it invokes
// with the receiver prepended to its argument list (spec.md glossary:
// "Bound method — a value that captures a receiver and a callable").
type Method struct {
	Receiver     Value
	Fn           *Function
	receiverHash uint32
}

func NewMethod(receiver Value, fn *Function) *Method {
	h, _ := HashOf(receiver)
	return &Method{Receiver: receiver, Fn: fn, receiverHash: h}
}
