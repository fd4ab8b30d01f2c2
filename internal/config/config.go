// Package config is for app wide settings that are unmarshalled from Viper.
//
// Every setting can come from a command line flag, a UMICLUSTER_ prefixed
// environment variable (dashes become underscores) or a YAML config file,
// in that order of precedence, falling back to the defaults below.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/11bthornton/clustering/internal/codon"
)

// EnvPrefix prefixes environment variable overrides.
const EnvPrefix = "UMICLUSTER"

// Report modes.
const (
	ModeCDR = "cdr" // CDR-keyed cross report with the barcode index as companion
	ModeUMI = "umi" // barcode-keyed error report
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setting keys.
const (
	KeyConfig               = "config"
	KeyUMIFastq             = "umi-fastq"
	KeyCDRFastq             = "cdr-fastq"
	KeyMode                 = "mode"
	KeyFormat               = "format"
	KeyTake                 = "take"
	KeyMaxAmbiguous         = "max-ambiguous"
	KeyWorkers              = "workers"
	KeyThreshold            = "threshold"
	KeySkipMalformed        = "skip-malformed"
	KeyProteinQuality       = "protein-quality"
	KeyProgress             = "progress"
	KeyAffinityCSV          = "affinity-csv"
	KeyAffinityMaxThreshold = "affinity-max-threshold"
	KeyAddr                 = "addr"
)

// Config is the root-level settings struct.
type Config struct {
	// paths to the paired FASTQ files
	UMIFastq string `mapstructure:"umi-fastq"`
	CDRFastq string `mapstructure:"cdr-fastq"`

	// which report to produce and how to write it
	Mode   string `mapstructure:"mode"`
	Format string `mapstructure:"format"`

	// read at most this many pairs; 0 reads everything
	Take int64 `mapstructure:"take"`

	// CDRs with this share of N or more are not counted against their barcode
	MaxAmbiguous float64 `mapstructure:"max-ambiguous"`

	// goroutines for ingestion and reporting
	Workers int `mapstructure:"workers"`

	// drop clusters whose total is at most this before reporting
	Threshold int `mapstructure:"threshold"`

	SkipMalformed  bool   `mapstructure:"skip-malformed"`
	ProteinQuality string `mapstructure:"protein-quality"`
	Progress       bool   `mapstructure:"progress"`

	// reference barcode csv and the highest threshold to sweep
	AffinityCSV          string `mapstructure:"affinity-csv"`
	AffinityMaxThreshold int    `mapstructure:"affinity-max-threshold"`

	// listen address of the HTTP server
	Addr string `mapstructure:"addr"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		UMIFastq:             "forward.fastq",
		CDRFastq:             "reverse.fastq",
		Mode:                 ModeCDR,
		Format:               FormatText,
		Take:                 180_000_000,
		MaxAmbiguous:         0.55,
		Workers:              1,
		Threshold:            0,
		ProteinQuality:       codon.PolicyFirstThird,
		AffinityMaxThreshold: 2500,
		Addr:                 "localhost:8080",
	}
}

// New returns a Viper instance with defaults and environment overrides in
// place.
func New() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyUMIFastq, d.UMIFastq)
	v.SetDefault(KeyCDRFastq, d.CDRFastq)
	v.SetDefault(KeyMode, d.Mode)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyTake, d.Take)
	v.SetDefault(KeyMaxAmbiguous, d.MaxAmbiguous)
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyThreshold, d.Threshold)
	v.SetDefault(KeySkipMalformed, d.SkipMalformed)
	v.SetDefault(KeyProteinQuality, d.ProteinQuality)
	v.SetDefault(KeyProgress, d.Progress)
	v.SetDefault(KeyAffinityCSV, d.AffinityCSV)
	v.SetDefault(KeyAffinityMaxThreshold, d.AffinityMaxThreshold)
	v.SetDefault(KeyAddr, d.Addr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// AddInputFlags adds the flags that select and read the FASTQ pair.
func AddInputFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(KeyConfig, "", "path to a YAML settings file")
	fs.StringP(KeyUMIFastq, "u", d.UMIFastq, "FASTQ file with the barcode reads")
	fs.StringP(KeyCDRFastq, "c", d.CDRFastq, "FASTQ file with the variable region reads")
	fs.Int64P(KeyTake, "t", d.Take, "read at most this many pairs (0 reads all)")
	fs.Float64(KeyMaxAmbiguous, d.MaxAmbiguous, "ambiguous share at which a CDR is not counted against its barcode")
	fs.IntP(KeyWorkers, "j", d.Workers, "goroutines for ingestion and reporting")
	fs.Bool(KeySkipMalformed, d.SkipMalformed, "skip read pairs of the wrong length instead of failing")
	fs.Bool(KeyProgress, d.Progress, "show a progress bar while reading")
}

// AddReportFlags adds the flags that shape a report.
func AddReportFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP(KeyMode, "p", d.Mode, `report to print: "cdr" or "umi"`)
	fs.StringP(KeyFormat, "o", d.Format, `output format: "text" or "json"`)
	fs.Int(KeyThreshold, d.Threshold, "drop clusters whose total is at most this")
	fs.String(KeyProteinQuality, d.ProteinQuality, `protein quality policy: "first-third" or "min"`)
}

// AddAffinityFlags adds the flags of the threshold sweep.
func AddAffinityFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(KeyAffinityCSV, d.AffinityCSV, "CSV of reference barcodes (barcode in the second column)")
	fs.Int(KeyAffinityMaxThreshold, d.AffinityMaxThreshold, "highest threshold to sweep")
}

// AddServerFlags adds the flags of the HTTP server.
func AddServerFlags(fs *pflag.FlagSet) {
	fs.String(KeyAddr, Default().Addr, "listen address")
}

// Load binds fs to v, reads the config file if one is named, and returns the
// validated settings.
func Load(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// InvalidSettingError names a setting with an unusable value.
type InvalidSettingError struct {
	Key    string
	Value  interface{}
	Reason string
}

func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Key, e.Value, e.Reason)
}

// Validate checks every setting.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeCDR, ModeUMI:
	default:
		return &InvalidSettingError{KeyMode, c.Mode, `must be "cdr" or "umi"`}
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return &InvalidSettingError{KeyFormat, c.Format, `must be "text" or "json"`}
	}
	if c.UMIFastq == "" {
		return &InvalidSettingError{KeyUMIFastq, c.UMIFastq, "must be set"}
	}
	if c.CDRFastq == "" {
		return &InvalidSettingError{KeyCDRFastq, c.CDRFastq, "must be set"}
	}
	if c.Take < 0 {
		return &InvalidSettingError{KeyTake, c.Take, "must not be negative"}
	}
	if c.MaxAmbiguous < 0 || c.MaxAmbiguous > 1 {
		return &InvalidSettingError{KeyMaxAmbiguous, c.MaxAmbiguous, "must be in [0, 1]"}
	}
	if c.Workers < 1 {
		return &InvalidSettingError{KeyWorkers, c.Workers, "must be at least 1"}
	}
	if c.Threshold < 0 {
		return &InvalidSettingError{KeyThreshold, c.Threshold, "must not be negative"}
	}
	if _, err := codon.PolicyByName(c.ProteinQuality); err != nil {
		return &InvalidSettingError{KeyProteinQuality, c.ProteinQuality, err.Error()}
	}
	if c.AffinityMaxThreshold < 0 {
		return &InvalidSettingError{KeyAffinityMaxThreshold, c.AffinityMaxThreshold, "must not be negative"}
	}
	return nil
}
