// Command vmcore is the reference embedder for the virtual machine
// (spec.md §4.16): a thin CLI that loads a compiled module and either
// runs it, disassembles it, or serves the gRPC embedder interface.
// Grounded on funvibe-funxy/cmd/funxy/main.go's subcommand dispatch shape,
// stripped of everything that drove the teacher's own compiler front-end
// (lexing, parsing, analysis, tree-walk/VM backend selection) since this
// program only ever consumes an already-compiled module.
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/mattn/go-isatty"
	"google.golang.org/grpc"

	"github.com/coreware/vmcore/internal/bytecode"
	"github.com/coreware/vmcore/internal/diag"
	"github.com/coreware/vmcore/internal/embedrpc"
	"github.com/coreware/vmcore/internal/loader"
	"github.com/coreware/vmcore/internal/value"
	"github.com/coreware/vmcore/internal/vm"
	"github.com/coreware/vmcore/internal/vmconfig"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := loadConfig()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:], cfg)
	case "disasm":
		err = disasmCmd(os.Args[2:])
	case "serve":
		err = serveCmd(os.Args[2:], cfg)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "vmcore:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vmcore run <module.vmb> [export]")
	fmt.Fprintln(os.Stderr, "       vmcore disasm <module.vmb>")
	fmt.Fprintln(os.Stderr, "       vmcore serve")
}

// loadConfig reads ./vmcore.yaml if present, falling back to
// vmconfig.Default() otherwise — an absent config file is not an error,
// matching the teacher's FindConfig's "empty path, nil error" contract
// for a missing funxy.yaml.
func loadConfig() vmconfig.Config {
	if _, err := os.Stat("vmcore.yaml"); err == nil {
		if cfg, err := vmconfig.Load("vmcore.yaml"); err == nil {
			return cfg
		}
	}
	return vmconfig.Default()
}

func loadModuleFile(path string, res loader.Resolver) (*loader.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := diag.FormatFilePath(path)
	return loader.Load(f, name, res)
}

func runCmd(args []string, cfg vmconfig.Config) error {
	if len(args) < 1 {
		return fmt.Errorf("run requires a module path")
	}
	export := "main"
	if len(args) >= 2 {
		export = args[1]
	}

	machine := vm.NewWithConfig(cfg)
	mod, err := loadModuleFile(args[0], machine)
	if err != nil {
		return err
	}
	machine.LoadModule(mod)

	result, err := machine.Run(mod.Name, export)
	if err != nil {
		return err
	}
	fmt.Println(value.Repr(result, false))
	return nil
}

func serveCmd(args []string, cfg vmconfig.Config) error {
	machine := vm.NewWithConfig(cfg)
	srv := embedrpc.NewServer(machine, func(path string) (*loader.Module, error) {
		return loadModuleFile(path, machine)
	})

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.GRPCAddr, err)
	}
	gs := grpc.NewServer()
	srv.Register(gs)
	fmt.Fprintf(os.Stderr, "vmcore: serving on %s\n", cfg.GRPCAddr)
	return gs.Serve(lis)
}

// disasmCmd pretty-prints every function's bytecode. Colorized output is
// gated on a real terminal being attached, the same role go-isatty plays
// for the teacher's own double-buffered terminal output in
// internal/evaluator/builtins_term.go.
func disasmCmd(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("disasm requires a module path")
	}
	machine := vm.New()
	mod, err := loadModuleFile(args[0], machine)
	if err != nil {
		return err
	}

	colored := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	for i, fn := range mod.Functions {
		printFuncHeader(i, fn.Name, colored)
		disassembleOne(fn.Code)
	}
	return nil
}

func printFuncHeader(idx int, name string, colored bool) {
	if colored {
		fmt.Printf("\x1b[1mfunc %d %s\x1b[0m\n", idx, name)
		return
	}
	fmt.Printf("func %d %s\n", idx, name)
}

// disassembleOne prints one function's instructions in order, reading
// each opcode's fixed-width immediates per bytecode.OperandWidths and
// skipping SwitchTable's inline variable-length case table the same way
// internal/vm/generator.go's isGeneratorFunc does when scanning for Yield.
func disassembleOne(code []byte) {
	pc := 0
	for pc < len(code) {
		start := pc
		op := bytecode.Opcode(code[pc])
		pc++
		w := bytecode.OperandWidths[op]
		a, apc := readImm(code, pc, w[0])
		b, bpc := readImm(code, apc, w[1])
		pc = bpc

		switch w[0] {
		case 0:
			fmt.Printf("  %04d %s\n", start, op)
		default:
			if w[1] == 0 {
				fmt.Printf("  %04d %s %d\n", start, op, a)
			} else {
				fmt.Printf("  %04d %s %d %d\n", start, op, a, b)
			}
		}

		if op == bytecode.SwitchTable {
			n := a
			pc += n*(2+4) + 4
		}
	}
}

func readImm(code []byte, pc int, width uint8) (int, int) {
	switch width {
	case 0:
		return 0, pc
	case 1:
		return int(code[pc]), pc + 1
	case 2:
		return int(code[pc])<<8 | int(code[pc+1]), pc + 2
	case 4:
		return int(code[pc])<<24 | int(code[pc+1])<<16 | int(code[pc+2])<<8 | int(code[pc+3]), pc + 4
	default:
		return 0, pc
	}
}
