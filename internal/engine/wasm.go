package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// WasmConfig configures the WASI host.
type WasmConfig struct {
	// MaxMemory caps guest memory in bytes (default 512 MiB).
	MaxMemory uint64
	// Timeout bounds one job (default 2 minutes).
	Timeout time.Duration
}

// Wasm runs a WASI command module once per job. The JSON request is written
// to the guest's stdin and newline-delimited JSON messages are read back
// from its stdout.
type Wasm struct {
	name     string
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	timeout  time.Duration
	mu       sync.Mutex
}

// NewWasm compiles module. Close releases the runtime.
func NewWasm(ctx context.Context, name string, module []byte, cfg WasmConfig) (*Wasm, error) {
	if cfg.MaxMemory == 0 {
		cfg.MaxMemory = 512 << 20
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}

	pages := uint32(cfg.MaxMemory / 65536)
	if pages == 0 {
		pages = 1
	}
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithMemoryLimitPages(pages).
		WithCloseOnContextDone(true))

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}
	compiled, err := runtime.CompileModule(ctx, module)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("failed to compile WASM module: %w", err)
	}
	return &Wasm{name: name, runtime: runtime, compiled: compiled, timeout: cfg.Timeout}, nil
}

// LoadWasm reads and compiles the module at path.
func LoadWasm(ctx context.Context, path string, cfg WasmConfig) (*Wasm, error) {
	module, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read WASM module: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), ".wasm")
	return NewWasm(ctx, name, module, cfg)
}

func (w *Wasm) Name() string { return "wasm:" + w.name }

// Run implements Engine. Jobs are serialised; a guest handles one request
// per instantiation.
func (w *Wasm) Run(ctx context.Context, req Request, emit func(Message)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	in, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	config := wazero.NewModuleConfig().
		WithName("").
		WithArgs(w.name, string(req.Command)).
		WithStdin(bytes.NewReader(in)).
		WithStdout(&stdout).
		WithStderr(&stderr)

	mod, err := w.runtime.InstantiateModule(ctx, w.compiled, config)
	if mod != nil {
		defer mod.Close(ctx)
	}
	if err != nil {
		var exitErr *sys.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 0 {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("guest failed: %w: %s", err, msg)
			}
			return fmt.Errorf("guest failed: %w", err)
		}
	}
	return DecodeMessages(&stdout, emit)
}

// Close releases the runtime and every compiled module.
func (w *Wasm) Close(ctx context.Context) error {
	return w.runtime.Close(ctx)
}

// DecodeMessages reads newline-delimited JSON messages from r. Blank lines
// are skipped.
func DecodeMessages(r io.Reader, emit func(Message)) error {
	sc := bufio.NewScanner(r)
	// Success messages carry the whole document.
	sc.Buffer(make([]byte, 0, 64*1024), 1<<30)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var m Message
		if err := json.Unmarshal(line, &m); err != nil {
			return fmt.Errorf("malformed worker message: %w", err)
		}
		emit(m)
	}
	return sc.Err()
}
