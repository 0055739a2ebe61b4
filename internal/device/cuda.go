package device

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
)

// Prober detects CUDA-capable GPUs without linking against CUDA.
type Prober struct {
	lookupEnv func(string) (string, bool)
	stat      func(string) (os.FileInfo, error)
	lookPath  func(string) (string, error)
	output    func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewProber builds a prober using real OS dependencies.
func NewProber() *Prober {
	return &Prober{
		lookupEnv: os.LookupEnv,
		stat:      os.Stat,
		lookPath:  exec.LookPath,
		output: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// NewProberForTests creates a prober with injectable dependencies.
func NewProberForTests(
	lookupEnv func(string) (string, bool),
	stat func(string) (os.FileInfo, error),
	lookPath func(string) (string, error),
	output func(ctx context.Context, name string, args ...string) ([]byte, error),
) *Prober {
	return &Prober{lookupEnv: lookupEnv, stat: stat, lookPath: lookPath, output: output}
}

// HasCUDA reports whether at least one NVIDIA GPU is visible to this process.
func (p *Prober) HasCUDA() bool {
	if v, ok := p.lookupEnv("CUDA_VISIBLE_DEVICES"); ok && cudaHidden(v) {
		return false
	}

	if _, err := p.stat("/dev/nvidia0"); err == nil {
		return true
	}

	smi, err := p.lookPath("nvidia-smi")
	if err != nil {
		return false
	}
	out, err := p.output(context.Background(), smi, "-L")
	if err != nil {
		return false
	}
	for _, line := range bytes.Split(out, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimSpace(line), []byte("GPU ")) {
			return true
		}
	}
	return false
}

// cudaHidden reports whether a CUDA_VISIBLE_DEVICES value hides every GPU.
func cudaHidden(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "-1", "none", "void", "nodevfiles":
		return true
	}
	return false
}
