package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddInputFlags(fs)
	AddReportFlags(fs)
	AddAffinityFlags(fs)
	AddServerFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(New(), flags(t))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, &want, c)
	assert.Equal(t, ModeCDR, c.Mode)
	assert.Equal(t, int64(180_000_000), c.Take)
	assert.InDelta(t, 0.55, c.MaxAmbiguous, 1e-12)
}

func TestLoadFlags(t *testing.T) {
	c, err := Load(New(), flags(t,
		"-u", "a.fq", "--cdr-fastq", "b.fq",
		"--mode", "umi", "-t", "10", "-j", "4",
		"--protein-quality", "min", "--threshold", "2",
		"--format", "json",
	))
	require.NoError(t, err)

	assert.Equal(t, "a.fq", c.UMIFastq)
	assert.Equal(t, "b.fq", c.CDRFastq)
	assert.Equal(t, ModeUMI, c.Mode)
	assert.Equal(t, int64(10), c.Take)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "min", c.ProteinQuality)
	assert.Equal(t, 2, c.Threshold)
	assert.Equal(t, FormatJSON, c.Format)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("UMICLUSTER_MAX_AMBIGUOUS", "0.25")
	t.Setenv("UMICLUSTER_WORKERS", "3")

	c, err := Load(New(), flags(t))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, c.MaxAmbiguous, 1e-12)
	assert.Equal(t, 3, c.Workers)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: umi\naffinity-max-threshold: 10\n"), 0o644))

	c, err := Load(New(), flags(t, "--config", path, "--threshold", "1"))
	require.NoError(t, err)
	assert.Equal(t, ModeUMI, c.Mode)
	assert.Equal(t, 10, c.AffinityMaxThreshold)
	assert.Equal(t, 1, c.Threshold)

	_, err = Load(New(), flags(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"mode", func(c *Config) { c.Mode = "both" }, KeyMode},
		{"format", func(c *Config) { c.Format = "xml" }, KeyFormat},
		{"umi path", func(c *Config) { c.UMIFastq = "" }, KeyUMIFastq},
		{"cdr path", func(c *Config) { c.CDRFastq = "" }, KeyCDRFastq},
		{"take", func(c *Config) { c.Take = -1 }, KeyTake},
		{"ambiguous", func(c *Config) { c.MaxAmbiguous = 1.5 }, KeyMaxAmbiguous},
		{"workers", func(c *Config) { c.Workers = 0 }, KeyWorkers},
		{"threshold", func(c *Config) { c.Threshold = -2 }, KeyThreshold},
		{"policy", func(c *Config) { c.ProteinQuality = "mean" }, KeyProteinQuality},
		{"sweep", func(c *Config) { c.AffinityMaxThreshold = -1 }, KeyAffinityMaxThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			var ise *InvalidSettingError
			require.True(t, errors.As(err, &ise))
			assert.Equal(t, tt.key, ise.Key)
		})
	}

	c := Default()
	assert.NoError(t, c.Validate())
}
