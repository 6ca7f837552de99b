package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// EnvGenerateReference switches the harness into generation mode when set
// to a true value ("1", "true", ...).
const EnvGenerateReference = "GRIDCHECK_GEN_REF"

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

const (
	defaultStore        = StoreFile
	defaultReferenceDir = "testdata/references"
	defaultDatabasePath = "references.db"
)

// HarnessConfig configures a regression run. Every field is optional; the
// Get* methods return the default for unset fields.
type HarnessConfig struct {
	GenerateReference *bool   `json:"generate_reference,omitempty"`
	Store             *string `json:"store,omitempty"` // "file" or "sqlite"
	ReferenceDir      *string `json:"reference_dir,omitempty"`
	DatabasePath      *string `json:"database_path,omitempty"`

	// Threshold and ThresholdStrict override the per-case tolerances when set.
	Threshold       *float64 `json:"threshold,omitempty"`
	ThresholdStrict *float64 `json:"threshold_strict,omitempty"`

	LogPasses *bool `json:"log_passes,omitempty"`
}

func ptrBool(v bool) *bool { return &v }

// EmptyHarnessConfig returns a HarnessConfig with all fields unset.
func EmptyHarnessConfig() *HarnessConfig {
	return &HarnessConfig{}
}

// LoadHarnessConfig loads a HarnessConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadHarnessConfig(path string) (*HarnessConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyHarnessConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment using lookup, which has
// the signature of os.LookupEnv.
func (c *HarnessConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	v, ok := lookup(EnvGenerateReference)
	if !ok || v == "" {
		return nil
	}
	gen, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", EnvGenerateReference, v, err)
	}
	c.GenerateReference = ptrBool(gen)
	return nil
}

// Validate checks that the configuration values are valid.
func (c *HarnessConfig) Validate() error {
	if c.Store != nil {
		switch *c.Store {
		case StoreFile, StoreSQLite:
		default:
			return fmt.Errorf("store must be %q or %q, got %q", StoreFile, StoreSQLite, *c.Store)
		}
	}
	if c.ReferenceDir != nil && *c.ReferenceDir == "" {
		return fmt.Errorf("reference_dir must not be empty")
	}
	if c.DatabasePath != nil && *c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.Threshold != nil && !validTolerance(*c.Threshold) {
		return fmt.Errorf("threshold must be a non-negative number, got %g", *c.Threshold)
	}
	if c.ThresholdStrict != nil && !validTolerance(*c.ThresholdStrict) {
		return fmt.Errorf("threshold_strict must be a non-negative number, got %g", *c.ThresholdStrict)
	}
	if c.Threshold != nil && c.ThresholdStrict != nil && *c.ThresholdStrict > *c.Threshold {
		return fmt.Errorf("threshold_strict %g must not exceed threshold %g", *c.ThresholdStrict, *c.Threshold)
	}
	return nil
}

func validTolerance(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// GetGenerateReference returns the generate_reference value or the default.
func (c *HarnessConfig) GetGenerateReference() bool {
	if c.GenerateReference == nil {
		return false
	}
	return *c.GenerateReference
}

// GetStore returns the store backend or the default.
func (c *HarnessConfig) GetStore() string {
	if c.Store == nil {
		return defaultStore
	}
	return *c.Store
}

// GetReferenceDir returns the file store root or the default.
func (c *HarnessConfig) GetReferenceDir() string {
	if c.ReferenceDir == nil {
		return defaultReferenceDir
	}
	return *c.ReferenceDir
}

// GetDatabasePath returns the sqlite database path or the default.
func (c *HarnessConfig) GetDatabasePath() string {
	if c.DatabasePath == nil {
		return defaultDatabasePath
	}
	return *c.DatabasePath
}

// GetThresholds returns the configured tolerances, falling back to the
// given per-case values for unset fields.
func (c *HarnessConfig) GetThresholds(threshold, strict float64) (float64, float64) {
	if c.Threshold != nil {
		threshold = *c.Threshold
	}
	if c.ThresholdStrict != nil {
		strict = *c.ThresholdStrict
	}
	return threshold, strict
}

// GetLogPasses returns the log_passes value or the default.
func (c *HarnessConfig) GetLogPasses() bool {
	if c.LogPasses == nil {
		return false
	}
	return *c.LogPasses
}
