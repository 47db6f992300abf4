// Package vmconfig loads the embedder-level knobs spec.md §4.13 keeps
// outside the interpreter's pure (module, args) -> result contract:
// resource limits and wiring, never bytecode semantics. Grounded on
// funvibe-funxy/internal/ext/config.go's yaml.v3-tagged Config struct and
// its LoadConfig/ParseConfig/setDefaults split, retargeted from funxy.yaml's
// Go-binding dependency list to vmcore.yaml's resource/transport knobs.
package vmconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level vmcore.yaml document.
type Config struct {
	// InitialStackSize mirrors the teacher's InitialStackSize constant. It is
	// parsed and defaulted but nothing reads it: frames start with an empty
	// operand stack.
	InitialStackSize int `yaml:"initial_stack_size,omitempty"`

	// MaxStackSize bounds how far a single frame's operand stack may grow
	// before the interpreter raises diag.ErrStackOverflow.
	MaxStackSize int `yaml:"max_stack_size,omitempty"`

	// MaxFrameCount bounds call depth, mirroring the teacher's
	// MaxFrameCount constant, before diag.ErrFrameOverflow is raised.
	MaxFrameCount int `yaml:"max_frame_count,omitempty"`

	// BuiltinPath lists directories for native builtin modules, in order.
	// It is parsed but nothing searches it: builtins are registered by
	// name through the embedder API.
	BuiltinPath []string `yaml:"builtin_path,omitempty"`

	// GRPCAddr is the bind address internal/embedrpc listens on when
	// cmd/vmcore's `serve` subcommand starts the gRPC service.
	GRPCAddr string `yaml:"grpc_addr,omitempty"`
}

// Default mirrors the teacher's InitialStackSize=2048 / MaxFrameCount=4096
// constants exactly, scaling MaxStackSize up from there since the teacher's
// own stack has no separate overflow ceiling (its stack grows unbounded
// until the host OS stack would overflow a recursive Go call, which this
// port avoids by keeping execute() an explicit loop rather than recursing).
func Default() Config {
	return Config{
		InitialStackSize: 2048,
		MaxStackSize:     1 << 20,
		MaxFrameCount:    4096,
		GRPCAddr:         "127.0.0.1:7833",
	}
}

// Load reads and parses a vmcore.yaml file, filling unset fields from
// Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses vmcore.yaml content from bytes, defaulting any field the
// document leaves zero.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	d := Default()
	if c.InitialStackSize <= 0 {
		c.InitialStackSize = d.InitialStackSize
	}
	if c.MaxStackSize <= 0 {
		c.MaxStackSize = d.MaxStackSize
	}
	if c.MaxFrameCount <= 0 {
		c.MaxFrameCount = d.MaxFrameCount
	}
	if c.GRPCAddr == "" {
		c.GRPCAddr = d.GRPCAddr
	}
}
