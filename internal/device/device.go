// Package device picks the compute target a model is loaded on.
//
// Selection is a flat, ordered rule table evaluated top to bottom; the first
// matching rule wins and CPU is the universal fallback, so Select never fails.
package device

import (
	"runtime"
	"strings"
)

// Device is a compute target understood by the model backends.
type Device string

const (
	// MPS is Apple GPU acceleration (Metal).
	MPS Device = "mps"
	// CUDA is an NVIDIA GPU.
	CUDA Device = "cuda"
	// CPU needs no accelerator.
	CPU Device = "cpu"
)

// String returns the lowercase device identifier.
func (d Device) String() string {
	return string(d)
}

// Upper returns the identifier as shown in transcript headers.
func (d Device) Upper() string {
	return strings.ToUpper(string(d))
}

// IsGPU reports whether the device is an accelerator.
func (d Device) IsGPU() bool {
	return d == MPS || d == CUDA
}

// Host describes the machine a selection is made for.
type Host struct {
	OS      string      // runtime.GOOS value
	HasCUDA func() bool // consulted only on linux and windows
}

// Selection is the chosen device plus a human-readable rationale.
type Selection struct {
	Device Device
	Reason string
}

type rule struct {
	match  func(Host) bool
	device Device
	reason string
}

var rules = []rule{
	{
		match:  func(h Host) bool { return h.OS == "darwin" },
		device: MPS,
		reason: "detected macOS (darwin), attempting Apple GPU acceleration",
	},
	{
		match:  func(h Host) bool { return linuxOrWindows(h) && h.HasCUDA != nil && h.HasCUDA() },
		device: CUDA,
		reason: "detected CUDA-enabled NVIDIA GPU",
	},
	{
		match:  linuxOrWindows,
		device: CPU,
		reason: "detected linux/windows without a CUDA device",
	},
	{
		match:  func(Host) bool { return true },
		device: CPU,
		reason: "unrecognized operating system, using cpu by default",
	},
}

func linuxOrWindows(h Host) bool {
	return h.OS == "linux" || h.OS == "windows"
}

// Select returns the device for h.
func Select(h Host) Selection {
	for _, r := range rules {
		if r.match(h) {
			return Selection{Device: r.device, Reason: r.reason}
		}
	}
	return Selection{Device: CPU, Reason: "no rule matched"}
}

// CurrentHost describes the running machine using the default prober.
func CurrentHost() Host {
	return Host{
		OS:      runtime.GOOS,
		HasCUDA: NewProber().HasCUDA,
	}
}
