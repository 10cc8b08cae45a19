package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matzehuels/qroute/pkg/buildinfo"
	"github.com/matzehuels/qroute/pkg/device"
	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/pipeline"
	"github.com/matzehuels/qroute/pkg/qubit"
	"github.com/matzehuels/qroute/pkg/render"
	"github.com/matzehuels/qroute/pkg/router"
)

// binaryFormats are base64-encoded in JSON responses.
var binaryFormats = map[string]bool{render.FormatPNG: true, render.FormatPDF: true}

// routeResponse is the body of a successful POST /v1/route.
type routeResponse struct {
	RunID     string             `json:"run_id"`
	Device    string             `json:"device"`
	Stats     pipeline.Stats     `json:"stats"`
	Cache     pipeline.CacheInfo `json:"cache"`
	Result    *router.Result     `json:"result"`
	Artifacts map[string]string  `json:"artifacts"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeBody(w, r, &opts); err != nil {
		writeError(w, err)
		return
	}
	if err := s.checkDeviceRef(opts.Device, opts.DeviceSpec); err != nil {
		writeError(w, err)
		return
	}
	s.cfg.Apply(&opts)
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	artifacts := make(map[string]string, len(result.Artifacts))
	for format, data := range result.Artifacts {
		if binaryFormats[format] {
			artifacts[format] = base64.StdEncoding.EncodeToString(data)
		} else {
			artifacts[format] = string(data)
		}
	}
	w.Header().Set("X-Run-ID", result.RunID)
	writeJSON(w, http.StatusOK, routeResponse{
		RunID:     result.RunID,
		Device:    result.Device.Name,
		Stats:     result.Stats,
		Cache:     result.CacheInfo,
		Result:    result.Route,
		Artifacts: artifacts,
	})
}

// topologyRequest names a device and optionally a diagram format.
type topologyRequest struct {
	Device     string            `json:"device,omitempty"`
	DeviceSpec *device.Device    `json:"device_spec,omitempty"`
	DeviceVars map[string]string `json:"device_vars,omitempty"`
	Format     string            `json:"format,omitempty"`
	Title      string            `json:"title,omitempty"`
}

// topologyResponse describes a device's coupling graph.
type topologyResponse struct {
	Name               string     `json:"name"`
	Description        string     `json:"description,omitempty"`
	Directed           bool       `json:"directed"`
	Nodes              int        `json:"nodes"`
	Edges              int        `json:"edges"`
	Diameter           *int       `json:"diameter"` // null when disconnected
	MaxDegreeNodes     []qubit.ID `json:"max_degree_nodes"`
	ArticulationPoints []qubit.ID `json:"articulation_points"`
	Rendering          string     `json:"rendering,omitempty"`
}

func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	var req topologyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Device == "" && req.DeviceSpec == nil {
		writeError(w, qerrors.New(qerrors.ErrCodeInvalidInput, "device or device_spec is required"))
		return
	}
	if err := s.checkDeviceRef(req.Device, req.DeviceSpec); err != nil {
		writeError(w, err)
		return
	}
	d, t, err := pipeline.LoadDevice(pipeline.Options{
		Device:     req.Device,
		DeviceSpec: req.DeviceSpec,
		DeviceVars: req.DeviceVars,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := topologyResponse{
		Name:               d.Name,
		Description:        d.Description,
		Directed:           t.Directed(),
		Nodes:              t.NodeCount(),
		Edges:              t.EdgeCount(),
		MaxDegreeNodes:     t.MaxDegreeNodes(),
		ArticulationPoints: t.ArticulationPoints(),
	}
	if diam, err := t.Diameter(); err == nil {
		resp.Diameter = &diam
	}
	if req.Format != "" {
		data, err := render.Render(r.Context(), render.ToDOT(t, render.Options{Title: req.Title}), req.Format)
		if err != nil {
			writeError(w, err)
			return
		}
		if binaryFormats[req.Format] {
			resp.Rendering = base64.StdEncoding.EncodeToString(data)
		} else {
			resp.Rendering = string(data)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type deviceSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	builtins := device.Builtins()
	out := make([]deviceSummary, 0, len(builtins))
	for _, d := range builtins {
		t, err := d.Topology()
		if err != nil {
			continue
		}
		out = append(out, deviceSummary{Name: d.Name, Description: d.Description, Nodes: t.NodeCount(), Edges: t.EdgeCount()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{Status: "ok", Info: buildinfo.Get()})
}

// checkDeviceRef rejects file references unless device files are enabled,
// and then only accepts relative paths inside the working directory.
func (s *Server) checkDeviceRef(ref string, spec *device.Device) error {
	if spec != nil || ref == "" {
		return nil
	}
	if _, err := device.Preset(ref); err == nil {
		return nil
	}
	if !s.deviceFiles {
		return qerrors.New(qerrors.ErrCodeDeviceNotFound, "unknown preset %q", ref).WithSubjects(ref)
	}
	return qerrors.ValidatePath(ref)
}

// =============================================================================
// Encoding
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return qerrors.Wrap(qerrors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorPayload struct {
	Error struct {
		Code     string   `json:"code"`
		Message  string   `json:"message"`
		Subjects []string `json:"subjects,omitempty"`
	} `json:"error"`
}

func errorBody(code, message string, subjects []string) errorPayload {
	var p errorPayload
	p.Error.Code = code
	p.Error.Message = message
	p.Error.Subjects = subjects
	return p
}

// writeError responds with the status derived from err's code. Errors
// without a code are internal.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		err = qerrors.Wrap(qerrors.ErrCodeTimeout, err, "request timed out")
	}
	code := qerrors.GetCode(err)
	if code == "" {
		code = qerrors.ErrCodeInternal
	}
	var subjects []string
	var qe *qerrors.Error
	if errors.As(err, &qe) {
		subjects = qe.Subjects
	}
	writeJSON(w, qerrors.HTTPStatus(err), errorBody(string(code), err.Error(), subjects))
}

func errNotFound(path string) error {
	return qerrors.New(qerrors.ErrCodeNotFound, "no endpoint at %s", path)
}
