package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/paths"
)

// Recognized keys in the terminal's config_0.properties file. All other
// lines belong to the terminal and pass through untouched.
const (
	MDDSRegionKey = "MDDS_REGION"
	FPSSRegionKey = "FPSS_REGION"
)

// Allowed region values. The terminal rejects anything else.
var (
	MDDSRegions = []string{"MDDS_NJ_HOSTS", "MDDS_STAGE_HOSTS", "MDDS_DEV_HOSTS"}
	FPSSRegions = []string{"FPSS_NJ_HOSTS", "FPSS_STAGE_HOSTS", "FPSS_DEV_HOSTS"}
)

// Defaults used until the properties file says otherwise.
const (
	DefaultMDDSRegion = "MDDS_NJ_HOSTS"
	DefaultFPSSRegion = "FPSS_NJ_HOSTS"
)

// Errors returned by region updates.
var (
	// ErrPropertiesMissing means the properties file does not exist yet. The
	// terminal creates it on first run; updated values are kept in memory so
	// a later update can succeed.
	ErrPropertiesMissing = errors.New("properties file does not exist yet")

	// ErrInvalidRegion means a value outside the allowed set was supplied.
	ErrInvalidRegion = errors.New("invalid region value")
)

// Regions holds the current server region selection and edits the terminal's
// properties file in place.
type Regions struct {
	mu   sync.Mutex
	path string
	// +checklocks:mu
	mdds string
	// +checklocks:mu
	fpss string
}

// NewRegions creates a Regions backed by the default properties path and
// loads the current selection from it if the file exists.
func NewRegions() (*Regions, error) {
	path, err := paths.PropertiesPath()
	if err != nil {
		return nil, fmt.Errorf("get properties path: %w", err)
	}
	return NewRegionsWithPath(path), nil
}

// NewRegionsWithPath creates a Regions backed by a custom properties path.
// This is useful for testing.
func NewRegionsWithPath(path string) *Regions {
	r := &Regions{
		path: path,
		mdds: DefaultMDDSRegion,
		fpss: DefaultFPSSRegion,
	}
	r.load()
	return r
}

// Path returns the properties file path.
func (r *Regions) Path() string {
	return r.path
}

// Current returns the current MDDS and FPSS region selection.
func (r *Regions) Current() (mdds, fpss string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mdds, r.fpss
}

// load reads the region keys from the properties file. Best effort: a
// missing file is normal, unknown keys are ignored, parse problems are
// logged and the defaults stand.
func (r *Regions) load() {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("read properties file failed", "path", r.path, "error", err)
		}
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, MDDSRegionKey+"="); ok {
			r.mdds = value
		} else if value, ok := strings.CutPrefix(line, FPSSRegionKey+"="); ok {
			r.fpss = value
		}
	}
	slog.Info("server region settings loaded", "mdds", r.mdds, "fpss", r.fpss)
}

// Update validates and applies a new region selection. The two recognized
// lines in the properties file are rewritten; every other line is preserved
// verbatim. When the file does not exist yet, the values are kept in memory
// and ErrPropertiesMissing is returned so the caller knows the file edit
// will only take effect after the terminal's first run.
func (r *Regions) Update(mdds, fpss string) error {
	if !slices.Contains(MDDSRegions, mdds) {
		return fmt.Errorf("%w: %q is not a known MDDS region", ErrInvalidRegion, mdds)
	}
	if !slices.Contains(FPSSRegions, fpss) {
		return fmt.Errorf("%w: %q is not a known FPSS region", ErrInvalidRegion, fpss)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Remember the selection for when the terminal creates the file.
			r.mdds = mdds
			r.fpss = fpss
			slog.Info("properties file not found, keeping region selection in memory",
				"path", r.path, "mdds", mdds, "fpss", fpss)
			return ErrPropertiesMissing
		}
		return fmt.Errorf("read properties file: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, MDDSRegionKey+"=") {
			lines[i] = MDDSRegionKey + "=" + mdds
		} else if strings.HasPrefix(trimmed, FPSSRegionKey+"=") {
			lines[i] = FPSSRegionKey + "=" + fpss
		}
	}

	if err := os.WriteFile(r.path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("write properties file: %w", err)
	}

	r.mdds = mdds
	r.fpss = fpss
	slog.Info("server region settings updated", "mdds", mdds, "fpss", fpss)
	return nil
}
