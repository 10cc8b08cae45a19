// Package pipeline runs the complete qroute pipeline shared by the CLI and
// the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: read the OpenQASM circuit and resolve the device
//  2. Route: insert SWAP and BRIDGE operations with the configured methods
//  3. Render: produce the requested artifacts (routed QASM, a JSON report,
//     or a topology diagram with the final placement)
//
// Routed results and artifacts are cached by content hash, so routing the
// same circuit on the same device with the same settings twice is free.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Circuit: src,
//	    Device:  "grid-3x3",
//	    Formats: []string{"qasm", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	qasm := result.Artifacts["qasm"]
package pipeline

import (
	"encoding/json"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qroute/pkg/cache"
	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/render"
	"github.com/matzehuels/qroute/pkg/router"
	"github.com/matzehuels/qroute/pkg/topology"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Artifact formats besides the diagram formats of [render.Formats].
const (
	FormatQASM = "qasm"
	FormatJSON = "json"
)

// DefaultFormat is produced when no format is requested.
const DefaultFormat = FormatQASM

// ValidFormats lists every artifact format.
var ValidFormats = append([]string{FormatQASM, FormatJSON}, render.Formats...)

// DefaultMethods lists the routing methods used when none are configured.
func DefaultMethods() []string {
	return router.MethodNames(router.DefaultMethods())
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Circuit string `json:"circuit"`
	Source  string `json:"source,omitempty"` // file name, for logs only

	// Device options. DeviceSpec wins over Device.
	Device     string            `json:"device,omitempty"` // preset or file path
	DeviceSpec *device.Device    `json:"device_spec,omitempty"`
	DeviceVars map[string]string `json:"device_vars,omitempty"`

	// Route options
	Placement     map[string]string `json:"placement,omitempty"` // q[0] -> node[3]
	Methods       []string          `json:"methods,omitempty"`
	Depth         int               `json:"depth,omitempty"`
	BridgeDepth   *int              `json:"bridge_depth,omitempty"` // 0 disables bridges
	MaxAdvance    int               `json:"max_advance,omitempty"`
	MaxIterations int               `json:"max_iterations,omitempty"`
	Refresh       bool              `json:"refresh,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	Device   *device.Device
	Topology *topology.Topology
	Circuit  *circuit.Circuit
	Route    *router.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Qubits     int           `json:"qubits"`
	Ops        int           `json:"ops"`
	Nodes      int           `json:"nodes"`
	Edges      int           `json:"edges"`
	ParseTime  time.Duration `json:"parse_time"`
	RouteTime  time.Duration `json:"route_time"`
	RenderTime time.Duration `json:"render_time"`
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	RouteHit  bool `json:"route_hit"`  // routed result came from cache
	RenderHit bool `json:"render_hit"` // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are known.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := qerrors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMethods checks that every name is a registered routing method.
func ValidateMethods(names []string) error {
	known := router.Methods()
	for _, n := range names {
		if !slices.Contains(known, n) {
			return qerrors.New(qerrors.ErrCodeInvalidInput,
				"unknown routing method %q (available: %v)", n, known).WithSubjects(n)
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Circuit == "" {
		return qerrors.New(qerrors.ErrCodeInvalidInput, "circuit is required")
	}
	if o.Device == "" && o.DeviceSpec == nil {
		return qerrors.New(qerrors.ErrCodeInvalidInput, "device or device_spec is required")
	}
	if err := o.ValidateForRoute(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForRoute validates and sets defaults for routing.
func (o *Options) ValidateForRoute() error {
	if len(o.Methods) == 0 {
		o.Methods = DefaultMethods()
	}
	if err := ValidateMethods(o.Methods); err != nil {
		return err
	}
	if o.Depth == 0 {
		o.Depth = router.DefaultDepth
	}
	if o.BridgeDepth == nil {
		d := router.DefaultBridgeDepth
		o.BridgeDepth = &d
	}
	if o.MaxAdvance == 0 {
		o.MaxAdvance = router.DefaultMaxAdvance
	}
	if o.Depth < 0 || *o.BridgeDepth < 0 || o.MaxIterations < 0 {
		return qerrors.New(qerrors.ErrCodeInvalidInput,
			"depth, bridge_depth and max_iterations must not be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ValidateFormats(o.Formats)
}

// RouterMethods builds the configured methods. LexiRoute picks up Depth,
// BridgeDepth and MaxAdvance.
func (o *Options) RouterMethods() ([]router.Method, error) {
	if err := o.ValidateForRoute(); err != nil {
		return nil, err
	}
	ms := make([]router.Method, 0, len(o.Methods))
	for _, name := range o.Methods {
		data, err := json.Marshal(map[string]any{
			"name":         name,
			"depth":        o.Depth,
			"bridge_depth": *o.BridgeDepth,
			"max_advance":  o.MaxAdvance,
		})
		if err != nil {
			return nil, err
		}
		m, err := router.DecodeMethod(data)
		if err != nil {
			return nil, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "method %s", name)
		}
		ms = append(ms, m)
	}
	return ms, nil
}

// SeedPlacement parses Placement. Keys are circuit qubits, values nodes.
func (o *Options) SeedPlacement() (map[qubit.ID]qubit.ID, error) {
	if len(o.Placement) == 0 {
		return nil, nil
	}
	out := make(map[qubit.ID]qubit.ID, len(o.Placement))
	for k, v := range o.Placement {
		u, err := qubit.Parse(k)
		if err != nil {
			return nil, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "placement key %q", k)
		}
		n, err := qubit.Parse(v)
		if err != nil {
			return nil, qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "placement value %q", v)
		}
		out[u] = n
	}
	return out, nil
}

// RouteKeyOpts returns cache key options for routing.
func (o *Options) RouteKeyOpts() cache.RouteKeyOpts {
	opts := cache.RouteKeyOpts{
		Methods:       o.Methods,
		Depth:         o.Depth,
		MaxAdvance:    o.MaxAdvance,
		MaxIterations: o.MaxIterations,
	}
	if o.BridgeDepth != nil {
		opts.BridgeDepth = *o.BridgeDepth
	}
	if len(o.Placement) > 0 {
		data, _ := json.Marshal(o.Placement) // map keys are sorted
		opts.Seed = string(data)
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for one artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Title: o.Title}
}
