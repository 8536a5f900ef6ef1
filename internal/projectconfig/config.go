// Package projectconfig provides the ProjectConfig struct and loader for
// .fidelity.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spboyer/fidelity/internal/utils"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by [Load].
const FileName = ".fidelity.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultReferencesDir = "output/source_of_truth"
	DefaultOutputsDir    = "output"
	DefaultResultsDir    = "evaluation_results"

	DefaultJudgeTimeout = 300
	DefaultWorkers      = 4

	DefaultCacheBackend    = CacheBackendFile
	DefaultCacheDir        = "evaluation_results"
	DefaultBlobContainer   = "fidelity-cache"
	DefaultReportThreshold = 0.0
)

// Cache backends.
const (
	CacheBackendFile = "file"
	CacheBackendBlob = "blob"
)

// PathsConfig holds the directories the run command works with.
type PathsConfig struct {
	References string `yaml:"references,omitempty"`
	Outputs    string `yaml:"outputs,omitempty"`
	Results    string `yaml:"results,omitempty"`
}

// JudgeConfig controls semantic enrichment.
type JudgeConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	// Model is the judge model. Empty lets the Copilot CLI choose.
	Model string `yaml:"model,omitempty"`
	// Timeout is in seconds.
	Timeout int `yaml:"timeout,omitempty"`
}

// TimeoutDuration returns Timeout as a duration.
func (j JudgeConfig) TimeoutDuration() time.Duration {
	return time.Duration(j.Timeout) * time.Second
}

// BlobConfig locates the Azure Storage container used by the blob backend.
type BlobConfig struct {
	AccountURL string `yaml:"account_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool      `yaml:"enabled,omitempty"`
	Backend string     `yaml:"backend,omitempty"`
	Dir     string     `yaml:"dir,omitempty"`
	Blob    BlobConfig `yaml:"blob,omitempty"`
}

// ReportConfig controls report output and the CI gate.
type ReportConfig struct {
	// JUnit is a path to write a JUnit XML report to. Empty disables it.
	JUnit string `yaml:"junit,omitempty"`
	// Threshold is the minimum overall score every candidate must reach.
	// Zero disables the gate.
	Threshold *float64 `yaml:"threshold,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .fidelity.yaml.
type ProjectConfig struct {
	Paths   PathsConfig  `yaml:"paths,omitempty"`
	Judge   JudgeConfig  `yaml:"judge,omitempty"`
	Workers int          `yaml:"workers,omitempty"`
	Cache   CacheConfig  `yaml:"cache,omitempty"`
	Report  ReportConfig `yaml:"report,omitempty"`

	// Dir is the directory holding the configuration file, or the start
	// directory when there was none. Relative paths are anchored here.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			References: DefaultReferencesDir,
			Outputs:    DefaultOutputsDir,
			Results:    DefaultResultsDir,
		},
		Judge: JudgeConfig{
			Enabled: boolPtr(false),
			Timeout: DefaultJudgeTimeout,
		},
		Workers: DefaultWorkers,
		Cache: CacheConfig{
			Enabled: boolPtr(true),
			Backend: DefaultCacheBackend,
			Dir:     DefaultCacheDir,
			Blob: BlobConfig{
				Container: DefaultBlobContainer,
			},
		},
		Report: ReportConfig{
			Threshold: float64Ptr(DefaultReportThreshold),
		},
	}
}

// Load finds .fidelity.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, dir, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.Dir = dir
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Dir = dir
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *ProjectConfig) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendFile:
	case CacheBackendBlob:
		if c.Cache.Blob.AccountURL == "" {
			return errors.New("cache.blob.account_url is required for the blob cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q (expected %q or %q)", c.Cache.Backend, CacheBackendFile, CacheBackendBlob)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Judge.Timeout < 0 {
		return fmt.Errorf("judge.timeout must not be negative, got %d", c.Judge.Timeout)
	}
	if t := c.Report.Threshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("report.threshold must be between 0 and 1, got %g", *t)
	}
	return nil
}

// Resolved returns a copy of c whose relative directories and report path are
// anchored at Dir.
func (c *ProjectConfig) Resolved() *ProjectConfig {
	out := *c
	if c.Dir == "" {
		return &out
	}

	utils.Anchor(c.Dir, &out.Paths.References, &out.Paths.Outputs, &out.Paths.Results, &out.Cache.Dir, &out.Report.JUnit)
	return &out
}

// findConfigFile walks up from dir looking for .fidelity.yaml (max 10 levels)
// and returns its contents and directory. Returns os.ErrNotExist, with the
// absolute start directory, if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range 10 {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, dir, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, absDir, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.References != "" {
		dst.Paths.References = src.Paths.References
	}
	if src.Paths.Outputs != "" {
		dst.Paths.Outputs = src.Paths.Outputs
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}

	// Judge
	if src.Judge.Enabled != nil {
		dst.Judge.Enabled = src.Judge.Enabled
	}
	if src.Judge.Model != "" {
		dst.Judge.Model = src.Judge.Model
	}
	if src.Judge.Timeout != 0 {
		dst.Judge.Timeout = src.Judge.Timeout
	}

	if src.Workers != 0 {
		dst.Workers = src.Workers
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Backend != "" {
		dst.Cache.Backend = src.Cache.Backend
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.Blob.AccountURL != "" {
		dst.Cache.Blob.AccountURL = src.Cache.Blob.AccountURL
	}
	if src.Cache.Blob.Container != "" {
		dst.Cache.Blob.Container = src.Cache.Blob.Container
	}

	// Report
	if src.Report.JUnit != "" {
		dst.Report.JUnit = src.Report.JUnit
	}
	if src.Report.Threshold != nil {
		dst.Report.Threshold = src.Report.Threshold
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func float64Ptr(f float64) *float64 {
	return &f
}
