// Package config loads and validates the library's TOML configuration.
package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/docker/go-units"
	"github.com/pingcap/tidb/br/pkg/storage"
)

// DefaultBaseImage is the container image components declare when the
// configuration does not override it.
const DefaultBaseImage = "kfp-components-runtime:latest"

const (
	defaultRows      = 1000
	defaultFiles     = 1
	defaultRowGroups = 1

	defaultPageSizeBytes = units.MiB
)

type S3Config struct {
	Region          string `toml:"region,omitempty"`
	AccessKey       string `toml:"access_key,omitempty"`
	SecretAccessKey string `toml:"secret_key,omitempty"`
	Provider        string `toml:"provider,omitempty"`
	Endpoint        string `toml:"endpoint,omitempty"`
	RoleArn         string `toml:"role_arn,omitempty"`
}

type GCSConfig struct {
	Credential string `toml:"credential,omitempty"`
}

// CommonConfig describes the pipeline root and batch-generation shape.
type CommonConfig struct {
	// Path is the pipeline root: a local directory, s3:// or gs:// URI.
	// Output artifacts and batch-generated files live under it.
	Path       string `toml:"path"`
	Prefix     string `toml:"prefix"`
	Files      int    `toml:"files"`
	Rows       int    `toml:"rows"`
	FileFormat string `toml:"format"`
}

type ParquetConfig struct {
	PageSize     string `toml:"page_size"`
	NumRowGroups int    `toml:"row_groups"`
	Compression  string `toml:"compression"`

	// PageSizeBytes is derived at runtime and not read from config.
	PageSizeBytes int64 `toml:"-"`
}

type CSVConfig struct {
	Separator string `toml:"separator,omitempty"`
	EndLine   string `toml:"endline,omitempty"`
}

// ComponentConfig declares the execution environment components carry:
// the base container image and any extra packages installed at step
// start. Earlier revisions used a components-specific image with no
// package list; both shapes are expressible here.
type ComponentConfig struct {
	BaseImage         string   `toml:"base_image"`
	PackagesToInstall []string `toml:"packages_to_install"`
}

// RegistryConfig names the image built and pushed by the push_image task.
type RegistryConfig struct {
	Image string `toml:"image"`
}

type Config struct {
	Common    CommonConfig    `toml:"common"`
	Parquet   ParquetConfig   `toml:"parquet"`
	CSV       CSVConfig       `toml:"csv"`
	Component ComponentConfig `toml:"component"`
	Registry  RegistryConfig  `toml:"registry"`
	S3Config  *S3Config       `toml:"s3,omitempty"`
	GCSConfig *GCSConfig      `toml:"gcs,omitempty"`
}

// Default returns a configuration usable without a config file.
func Default() *Config {
	return &Config{
		Common: CommonConfig{
			Path:       "./kfp_outputs",
			Prefix:     "dataset",
			Files:      defaultFiles,
			Rows:       defaultRows,
			FileFormat: "parquet",
		},
		Parquet: ParquetConfig{
			NumRowGroups:  defaultRowGroups,
			Compression:   "snappy",
			PageSizeBytes: defaultPageSizeBytes,
		},
		Component: ComponentConfig{
			BaseImage: DefaultBaseImage,
		},
	}
}

// Load reads a TOML config file, resolves derived values and validates
// the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", path, err)
	}
	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize resolves derived config values after loading.
func Normalize(cfg *Config) error {
	pageBytes, err := cfg.Parquet.resolvePageSizeBytes()
	if err != nil {
		return err
	}
	cfg.Parquet.PageSizeBytes = pageBytes

	if cfg.Component.BaseImage == "" {
		cfg.Component.BaseImage = DefaultBaseImage
	}
	return nil
}

// Validate returns a user-friendly error if the configuration is invalid.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Common.Path == "" {
		errs = append(errs, "common.path is required")
	}
	if cfg.Common.Prefix == "" {
		errs = append(errs, "common.prefix is required")
	}
	if cfg.Common.Files <= 0 {
		errs = append(errs, "common.files must be greater than 0")
	}
	if cfg.Common.Rows < 0 {
		errs = append(errs, "common.rows must be >= 0")
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Common.FileFormat))
	switch format {
	case "csv", "parquet":
	default:
		errs = append(errs, "common.format must be csv or parquet")
	}

	if format == "parquet" {
		if cfg.Parquet.NumRowGroups <= 0 {
			errs = append(errs, "parquet.row_groups must be greater than 0")
		} else if cfg.Common.Rows > 0 && cfg.Common.Rows%cfg.Parquet.NumRowGroups != 0 {
			errs = append(errs, "parquet.row_groups must divide common.rows")
		}
		if cfg.Parquet.PageSizeBytes <= 0 {
			errs = append(errs, "parquet.page_size must be greater than 0")
		}
	}

	if cfg.S3Config != nil && cfg.GCSConfig != nil {
		errs = append(errs, "only one of [s3] or [gcs] can be configured")
	}

	if len(errs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("invalid config:\n")
	for _, err := range errs {
		sb.WriteString(" - ")
		sb.WriteString(err)
		sb.WriteString("\n")
	}
	return fmt.Errorf("%s", strings.TrimRight(sb.String(), "\n"))
}

func (c *ParquetConfig) resolvePageSizeBytes() (int64, error) {
	if c.PageSize == "" {
		return defaultPageSizeBytes, nil
	}
	bytes, err := units.FromHumanSize(c.PageSize)
	if err != nil {
		return 0, fmt.Errorf("invalid page_size %q: %w", c.PageSize, err)
	}
	if bytes <= 0 {
		return 0, fmt.Errorf("invalid page_size %q: must be greater than 0", c.PageSize)
	}
	return bytes, nil
}

// GetStore opens the external storage behind the configured pipeline
// root. Local paths, s3:// and gs:// URIs are supported.
func GetStore(c *Config) (storage.ExternalStorage, error) {
	return OpenStore(c.Common.Path, c)
}

// OpenStore opens external storage for an arbitrary root using the
// credentials configured in cfg.
func OpenStore(root string, c *Config) (storage.ExternalStorage, error) {
	var op *storage.BackendOptions
	if c != nil && c.S3Config != nil {
		op = &storage.BackendOptions{S3: storage.S3BackendOptions{
			Region:          c.S3Config.Region,
			AccessKey:       c.S3Config.AccessKey,
			SecretAccessKey: c.S3Config.SecretAccessKey,
			Provider:        c.S3Config.Provider,
			Endpoint:        c.S3Config.Endpoint,
			RoleARN:         c.S3Config.RoleArn,
		}}
	} else if c != nil && c.GCSConfig != nil {
		op = &storage.BackendOptions{GCS: storage.GCSBackendOptions{
			CredentialsFile: c.GCSConfig.Credential,
		}}
	}

	s, err := storage.ParseBackend(root, op)
	if err != nil {
		return nil, err
	}

	return storage.NewWithDefaultOpt(context.Background(), s)
}
