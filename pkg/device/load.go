package device

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zclconf/go-cty/cty"

	qerrors "github.com/matzehuels/qroute/pkg/errors"
)

// Supported file formats, selected by extension.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatHCL  = "hcl"
)

// Formats lists the accepted file formats.
var Formats = []string{FormatJSON, FormatTOML, FormatHCL}

// LoadOption configures [Load] and [Resolve].
type LoadOption func(*loadConfig)

type loadConfig struct {
	vars map[string]cty.Value
}

// WithVars supplies HCL variable values. Other formats ignore them.
func WithVars(vars map[string]cty.Value) LoadOption {
	return func(c *loadConfig) { c.vars = vars }
}

// ParseVars turns name=value pairs into string variables. HCL converts them
// to the declared attribute types on use, so "size=5" works for numbers.
func ParseVars(pairs []string) (map[string]cty.Value, error) {
	vars := make(map[string]cty.Value, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, qerrors.New(qerrors.ErrCodeInvalidInput, "variable %q: want name=value", p)
		}
		vars[name] = cty.StringVal(value)
	}
	return vars, nil
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if err := qerrors.ValidateFormat(ext, Formats...); err != nil {
		return "", err
	}
	return ext, nil
}

// Load reads and validates a device file. A device without a name is named
// after the file.
func Load(path string, opts ...LoadOption) (*Device, error) {
	cfg := loadConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, qerrors.Wrap(qerrors.ErrCodeFileNotFound, err, "device file %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	d, err := Decode(data, format, path, cfg.vars)
	if err != nil {
		return nil, qerrors.Wrap(qerrors.ErrCodeInvalidDevice, err, "device file %s", path)
	}
	if d.Name == "" {
		d.Name = strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Decode parses data in the given format. filename only labels HCL
// diagnostics.
func Decode(data []byte, format, filename string, vars map[string]cty.Value) (*Device, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(bytes.NewReader(data))
	case FormatTOML:
		return ReadTOML(bytes.NewReader(data))
	case FormatHCL:
		return ParseHCL(data, filename, vars)
	}
	return nil, qerrors.New(qerrors.ErrCodeInvalidFormat, "unsupported device format %q", format)
}

// Resolve returns the preset called ref, or loads ref as a file.
func Resolve(ref string, opts ...LoadOption) (*Device, error) {
	if d, err := Preset(ref); err == nil {
		return d, nil
	}
	if _, err := os.Stat(ref); err != nil {
		return nil, qerrors.New(qerrors.ErrCodeDeviceNotFound,
			"no preset or device file named %q", ref).WithSubjects(ref)
	}
	return Load(ref, opts...)
}
