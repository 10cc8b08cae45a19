package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	qerrors "github.com/matzehuels/qroute/pkg/errors"
	"github.com/matzehuels/qroute/pkg/pipeline"
)

// stdoutPath as --output writes a single artifact to stdout.
const stdoutPath = "-"

// artifactWriteParams describes one batch of artifacts to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string // write order
	input     string   // source file, used to derive names
	output    string   // --output flag
}

// writeArtifacts writes every artifact and prints the paths. A single
// format goes to output verbatim; multiple formats go to base.format.
func writeArtifacts(p artifactWriteParams) error {
	if p.output == stdoutPath {
		if len(p.formats) != 1 {
			return qerrors.New(qerrors.ErrCodeInvalidInput, "--output - needs exactly one format")
		}
		_, err := os.Stdout.Write(p.artifacts[p.formats[0]])
		return err
	}

	paths := outputPaths(p.formats, p.input, p.output)
	for _, format := range p.formats {
		path := paths[format]
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, p.artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPaths maps each format to its file. Without --output the files sit
// next to the input as name.routed.format.
func outputPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if output != "" && len(formats) == 1 {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips a known format extension from output, or derives a base
// from input when output is empty.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".routed"
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// printRouteStats prints a one-line summary of a pipeline run.
func printRouteStats(r *pipeline.Result) {
	parts := []string{
		fmt.Sprintf("%d qubits", r.Stats.Qubits),
		fmt.Sprintf("%d ops", r.Stats.Ops),
		fmt.Sprintf("%d swaps", r.Route.Stats.Swaps),
		fmt.Sprintf("%d bridges", r.Route.Stats.Bridges),
	}
	if r.Route.Stats.Fallbacks > 0 {
		parts = append(parts, fmt.Sprintf("%d fallbacks", r.Route.Stats.Fallbacks))
	}
	if r.Route.Stats.Reorders > 0 {
		parts = append(parts, fmt.Sprintf("%d reordered", r.Route.Stats.Reorders))
	}
	if r.Route.Stats.Reversed > 0 {
		parts = append(parts, fmt.Sprintf("%d against coupling direction", r.Route.Stats.Reversed))
	}
	printStats(parts, r.CacheInfo.RouteHit)
}
