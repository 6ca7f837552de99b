package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestEmptyHarnessConfigDefaults(t *testing.T) {
	cfg := EmptyHarnessConfig()

	if cfg.GetGenerateReference() {
		t.Error("GetGenerateReference() = true, want false")
	}
	if got := cfg.GetStore(); got != StoreFile {
		t.Errorf("GetStore() = %q, want %q", got, StoreFile)
	}
	if got := cfg.GetReferenceDir(); got != "testdata/references" {
		t.Errorf("GetReferenceDir() = %q", got)
	}
	if got := cfg.GetDatabasePath(); got != "references.db" {
		t.Errorf("GetDatabasePath() = %q", got)
	}
	th, strict := cfg.GetThresholds(1e-8, 1e-14)
	if th != 1e-8 || strict != 1e-14 {
		t.Errorf("GetThresholds() = %g, %g; want per-case values", th, strict)
	}
	if cfg.GetLogPasses() {
		t.Error("GetLogPasses() = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on empty config: %v", err)
	}
}

func TestLoadHarnessConfig(t *testing.T) {
	path := writeConfig(t, "gridcheck.json", `{
  "generate_reference": true,
  "store": "sqlite",
  "database_path": "/tmp/refs.db",
  "threshold": 1e-6,
  "threshold_strict": 1e-12,
  "log_passes": true
}`)

	cfg, err := LoadHarnessConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.GetGenerateReference() {
		t.Error("expected generate_reference true")
	}
	if cfg.GetStore() != StoreSQLite {
		t.Errorf("GetStore() = %q, want sqlite", cfg.GetStore())
	}
	if cfg.GetDatabasePath() != "/tmp/refs.db" {
		t.Errorf("GetDatabasePath() = %q", cfg.GetDatabasePath())
	}
	// Unset fields keep their defaults.
	if cfg.GetReferenceDir() != "testdata/references" {
		t.Errorf("GetReferenceDir() = %q", cfg.GetReferenceDir())
	}
	th, strict := cfg.GetThresholds(1e-8, 1e-14)
	if th != 1e-6 || strict != 1e-12 {
		t.Errorf("GetThresholds() = %g, %g; want 1e-6, 1e-12", th, strict)
	}
	if !cfg.GetLogPasses() {
		t.Error("expected log_passes true")
	}
}

func TestLoadHarnessConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "config.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{"store": `, "failed to parse config JSON"},
		{"unknown store", "store.json", `{"store": "redis"}`, "store must be"},
		{"negative threshold", "neg.json", `{"threshold": -1}`, "threshold must be"},
		{"strict above loose", "order.json", `{"threshold": 1e-10, "threshold_strict": 1e-8}`, "must not exceed"},
		{"empty dir", "dir.json", `{"reference_dir": ""}`, "reference_dir"},
		{"wrong type", "type.json", `{"generate_reference": "yes"}`, "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadHarnessConfig(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadHarnessConfig_Missing(t *testing.T) {
	_, err := LoadHarnessConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "failed to stat") {
		t.Errorf("expected stat error, got %v", err)
	}
}

func TestLoadHarnessConfig_TooLarge(t *testing.T) {
	big := `{"store": "file", "pad": "` + strings.Repeat("x", 1024*1024) + `"}`
	path := writeConfig(t, "big.json", big)
	_, err := LoadHarnessConfig(path)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := func(vals map[string]string) func(string) (string, bool) {
		return func(k string) (string, bool) {
			v, ok := vals[k]
			return v, ok
		}
	}

	cfg := EmptyHarnessConfig()
	if err := cfg.ApplyEnv(env(nil)); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.GenerateReference != nil {
		t.Error("unset variable should leave generate_reference unset")
	}

	if err := cfg.ApplyEnv(env(map[string]string{EnvGenerateReference: "1"})); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if !cfg.GetGenerateReference() {
		t.Error("GRIDCHECK_GEN_REF=1 should enable generation")
	}

	// The environment wins over the file.
	cfg.GenerateReference = ptrBool(true)
	if err := cfg.ApplyEnv(env(map[string]string{EnvGenerateReference: "false"})); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.GetGenerateReference() {
		t.Error("GRIDCHECK_GEN_REF=false should disable generation")
	}

	if err := cfg.ApplyEnv(env(map[string]string{EnvGenerateReference: "maybe"})); err == nil {
		t.Error("expected error for unparsable value")
	}
}
