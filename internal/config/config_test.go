package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := configDir
	configDir = func() string { return dir }
	t.Cleanup(func() { configDir = old })
	return dir
}

func TestLoadMissingFile(t *testing.T) {
	withTempConfigDir(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	withTempConfigDir(t)

	in := &Config{
		AWSProfile:  "prod",
		AWSRegion:   "ap-south-1",
		Environment: "Production",
		VPCCIDR:     "10.0.0.0/16",
	}
	require.NoError(t, Save(in))

	out, err := Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSetDefaultsMergesExisting(t *testing.T) {
	withTempConfigDir(t)

	require.NoError(t, SetDefaults("prod", "ap-south-1", "", ""))
	require.NoError(t, SetDefaults("", "", "Staging", "10.1.0.0/16"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.AWSProfile)
	assert.Equal(t, "ap-south-1", cfg.AWSRegion)
	assert.Equal(t, "Staging", cfg.Environment)
	assert.Equal(t, "10.1.0.0/16", cfg.VPCCIDR)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := withTempConfigDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("aws_profile: [\n"), 0644))

	_, err := Load()
	assert.Error(t, err)
}
