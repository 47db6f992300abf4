// Package embedrpc exposes spec.md §6.2's embedder interface
// (LoadModule/Invoke/RegisterBuiltin) as a gRPC service (spec.md §4.15),
// grounded on funvibe-funxy/internal/evaluator/builtins_grpc.go's own use
// of google.golang.org/grpc and google.golang.org/protobuf. Unlike that
// file's grpcServer/grpcRegister builtins — which let a *script* define an
// arbitrary .proto schema at runtime via jhump/protoreflect's dynamic
// descriptors, because the schema is user data the evaluator has never
// seen before — this service's three RPCs are fixed at compile time, so
// their request/response shapes are ordinary google.protobuf.Struct
// messages (google.golang.org/protobuf/types/known/structpb) rather than
// a runtime-parsed descriptor. See DESIGN.md's "Dropped dependencies" for
// why jhump/protoreflect itself isn't wired here.
package embedrpc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/coreware/vmcore/internal/diag"
	"github.com/coreware/vmcore/internal/loader"
	"github.com/coreware/vmcore/internal/value"
	"github.com/coreware/vmcore/internal/vm"
)

// Embedder is the subset of *vm.VM this service drives. Declared as an
// interface so tests can substitute a fake without spinning up a real VM.
type Embedder interface {
	LoadModule(mod *loader.Module)
	Run(moduleName, entryExport string) (value.Value, error)
	RegisterBuiltin(v value.Value) int
}

var _ Embedder = (*vm.VM)(nil)

// Server implements the embedder gRPC service. Every RPC acquires mu
// before touching the embedder, preserving spec.md §5's single-threaded
// VM guarantee across concurrent gRPC calls (spec.md §4.15 / SPEC_FULL.md
// §5: the server serializes calls into the interpreter).
type Server struct {
	mu       sync.Mutex
	embedder Embedder
	loadFn   func(path string) (*loader.Module, error)

	handles   map[uint64]value.Value
	handleSeq uint64
}

// NewServer wraps an Embedder (normally a *vm.VM) plus the module-loading
// function (normally a closure that opens the file and calls loader.Load)
// behind the gRPC service.
func NewServer(embedder Embedder, loadFn func(path string) (*loader.Module, error)) *Server {
	return &Server{embedder: embedder, loadFn: loadFn, handles: map[uint64]value.Value{}}
}

// Register attaches the service to a grpc.Server using a hand-built
// ServiceDesc — there is no generated .pb.go stub to register, since the
// request/response messages are plain structpb.Struct values rather than
// a compiled schema (see the package doc).
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&serviceDesc, s)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "vmcore.Embedder",
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LoadModule", Handler: loadModuleHandler},
		{MethodName: "Invoke", Handler: invokeHandler},
		{MethodName: "RegisterBuiltin", Handler: registerBuiltinHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vmcore/embedrpc.proto",
}

func loadModuleHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := &structpb.Struct{}
	if err := dec(req); err != nil {
		return nil, err
	}
	s := srv.(*Server)
	if interceptor == nil {
		return s.handleLoadModule(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/vmcore.Embedder/LoadModule"}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return s.handleLoadModule(ctx, req.(*structpb.Struct))
	})
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := &structpb.Struct{}
	if err := dec(req); err != nil {
		return nil, err
	}
	s := srv.(*Server)
	if interceptor == nil {
		return s.handleInvoke(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/vmcore.Embedder/Invoke"}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return s.handleInvoke(ctx, req.(*structpb.Struct))
	})
}

func registerBuiltinHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := &structpb.Struct{}
	if err := dec(req); err != nil {
		return nil, err
	}
	s := srv.(*Server)
	if interceptor == nil {
		return s.handleRegisterBuiltin(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: s, FullMethod: "/vmcore.Embedder/RegisterBuiltin"}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return s.handleRegisterBuiltin(ctx, req.(*structpb.Struct))
	})
}

// handleLoadModule expects {"path": "<module file>"} and returns
// {"module": "<module name>"}.
func (s *Server) handleLoadModule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path, ok := req.Fields["path"]
	if !ok {
		return nil, fmt.Errorf("embedrpc: LoadModule requires a \"path\" field")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mod, err := s.loadFn(path.GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("embedrpc: loading %q: %w", path.GetStringValue(), err)
	}
	s.embedder.LoadModule(mod)
	return structpb.NewStruct(map[string]any{"module": mod.Name})
}

// handleInvoke expects {"module": "...", "export": "..."} and runs that
// function with no arguments (spec.md §6.2's entry-point shape), returning
// {"result": <encoded Value>, "correlation_id": "<uuid>"}. A correlation ID
// is stamped per call the same way google/uuid tags request/session
// identifiers in the teacher's own pack (funvibe-funxy/internal/ext
// tests), so a failure's diag.Trace can be cross-referenced against
// embedder-side logs.
func (s *Server) handleInvoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	moduleName := req.Fields["module"].GetStringValue()
	export := req.Fields["export"].GetStringValue()
	correlationID := uuid.New().String()

	s.mu.Lock()
	result, err := s.embedder.Run(moduleName, export)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("embedrpc[%s]: %w", correlationID, err)
	}

	encoded, err := s.encodeValue(result)
	if err != nil {
		return nil, fmt.Errorf("embedrpc[%s]: encoding result: %w", correlationID, err)
	}
	return structpb.NewStruct(map[string]any{
		"result":         encoded,
		"correlation_id": correlationID,
	})
}

// handleRegisterBuiltin expects {"name": "..."} and registers a handle
// placeholder builtin reachable by a later bytecode module's constant tag
// 5 (spec.md §4.9); the actual native behavior is wired embedder-side by
// name, not shipped over the wire, since Go closures can't round-trip
// through structpb.
func (s *Server) handleRegisterBuiltin(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := req.Fields["name"].GetStringValue()
	if name == "" {
		return nil, fmt.Errorf("embedrpc: RegisterBuiltin requires a \"name\" field")
	}
	s.mu.Lock()
	idx := s.embedder.RegisterBuiltin(value.Str(name))
	s.mu.Unlock()
	return structpb.NewStruct(map[string]any{"index": float64(idx)})
}

// encodeValue renders a Value as a structpb-compatible Go value: numbers,
// strings, bools and null pass through directly; tuples/lists become
// structpb lists; dicts with string-typed keys become nested structs.
// Standard/Union/Custom/Function values cannot round-trip through
// structpb, so they are replaced with an opaque handle (a registry index)
// the caller can pass back into a future RPC verbatim.
func (s *Server) encodeValue(v value.Value) (any, error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindBool:
		return v.AsBool(), nil
	case value.KindChar:
		return string(v.AsChar()), nil
	case value.KindBigint:
		return v.AsBigint().Float64(), nil
	case value.KindDecimal:
		return v.AsDecimal().Float64(), nil
	case value.KindString:
		return v.AsString().Raw(), nil
	case value.KindTuple:
		return s.encodeSlice(v.AsTuple().Elems)
	case value.KindList:
		return s.encodeSlice(v.AsList().Elems)
	case value.KindDict:
		out := map[string]any{}
		it := v.AsDict().Iter()
		for k, e, ok := it.Next(); ok; k, e, ok = it.Next() {
			if k.Kind() != value.KindString {
				return s.handleFor(v), nil
			}
			enc, err := s.encodeValue(e)
			if err != nil {
				return nil, err
			}
			out[k.AsString().Raw()] = enc
		}
		return out, nil
	default:
		return s.handleFor(v), nil
	}
}

func (s *Server) encodeSlice(elems []value.Value) ([]any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		enc, err := s.encodeValue(e)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

// handleFor stores v in the handle registry and returns a stable string
// token ("@<n>") a later RPC can present to look it up again.
func (s *Server) handleFor(v value.Value) string {
	id := atomic.AddUint64(&s.handleSeq, 1)
	s.mu.Lock()
	s.handles[id] = v
	s.mu.Unlock()
	return fmt.Sprintf("@%d", id)
}

// ResolveHandle looks up a value previously returned by handleFor.
func (s *Server) ResolveHandle(token string) (value.Value, bool) {
	var id uint64
	if _, err := fmt.Sscanf(token, "@%d", &id); err != nil {
		return value.Value{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.handles[id]
	return v, ok
}

// Trace renders the diag.Trace for an uncaught exception escaping Invoke,
// tagged with the same correlation ID reported to the caller.
func Trace(correlationID, message string, frames []diag.Frame) string {
	t := diag.Trace{Message: fmt.Sprintf("[%s] %s", correlationID, message), Frames: frames}
	return t.Render()
}
