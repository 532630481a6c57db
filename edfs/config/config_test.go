package config

import (
	"os"
	"path/filepath"
	"testing"

	internal "github.com/ZanzyTHEbar/embedded-dirfs/edfs"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	suite.tempDir, err = os.MkdirTemp("", "edfs-config-test-*")
	require.NoError(suite.T(), err)

	// Work from an empty directory so no stray edfs.yaml is picked up
	require.NoError(suite.T(), os.Chdir(suite.tempDir))
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	embed := cfg.Embed
	assert.Equal(suite.T(), ".", embed.Root)
	assert.Equal(suite.T(), "", embed.BaseDir)
	assert.Equal(suite.T(), internal.DefaultOutputFile, embed.Output)
	assert.Equal(suite.T(), internal.DefaultPackage, embed.Package)
	assert.Equal(suite.T(), internal.DefaultVariable, embed.Variable)
	assert.Equal(suite.T(), FormatSource, embed.Format)
	assert.Equal(suite.T(), internal.DefaultMaxDepth, embed.MaxDepth)
	assert.True(suite.T(), embed.Timestamps)
	assert.False(suite.T(), embed.Search)
	assert.False(suite.T(), embed.Try)
	assert.Empty(suite.T(), embed.Exclude)
	assert.Equal(suite.T(), 0, embed.Workers)

	assert.NoError(suite.T(), embed.Validate())
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
embed:
  root: assets
  output: assets_gen.go
  package: web
  variable: Assets
  format: snapshot
  search: true
  exclude:
    - "*.log"
    - "node_modules/"
  maxDepth: 10
  timestamps: false
`
	configPath := filepath.Join(suite.tempDir, "edfs.yaml")
	require.NoError(suite.T(), os.WriteFile(configPath, []byte(configContent), 0o644))

	for _, path := range []string{configPath, ""} {
		cfg, err := LoadConfig(path)
		require.NoError(suite.T(), err, "config should load from %q", path)

		embed := cfg.Embed
		assert.Equal(suite.T(), "assets", embed.Root)
		assert.Equal(suite.T(), "assets_gen.go", embed.Output)
		assert.Equal(suite.T(), "web", embed.Package)
		assert.Equal(suite.T(), "Assets", embed.Variable)
		assert.Equal(suite.T(), FormatSnapshot, embed.Format)
		assert.True(suite.T(), embed.Search)
		assert.Equal(suite.T(), []string{"*.log", "node_modules/"}, embed.Exclude)
		assert.Equal(suite.T(), 10, embed.MaxDepth)
		assert.False(suite.T(), embed.Timestamps)
	}
}

func (suite *ConfigTestSuite) TestEnvironmentOverridesFile() {
	configPath := filepath.Join(suite.tempDir, "edfs.yaml")
	require.NoError(suite.T(), os.WriteFile(configPath, []byte("embed:\n  root: from-file\n  maxDepth: 5\n"), 0o644))

	suite.T().Setenv("EDFS_EMBED_ROOT", "from-env")
	suite.T().Setenv("EDFS_EMBED_BASEDIR", "/srv/project")
	suite.T().Setenv("EDFS_EMBED_TRY", "true")

	cfg, err := LoadConfig(configPath)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "from-env", cfg.Embed.Root)
	assert.Equal(suite.T(), "/srv/project", cfg.Embed.BaseDir)
	assert.True(suite.T(), cfg.Embed.Try)
	assert.Equal(suite.T(), 5, cfg.Embed.MaxDepth, "file values survive where no env var is set")
	assert.Equal(suite.T(), filepath.Join("/srv/project", "from-env"), cfg.Embed.ResolvedRoot())
}

func (suite *ConfigTestSuite) TestFlagsOverrideEnvironment() {
	suite.T().Setenv("EDFS_EMBED_VARIABLE", "FromEnv")

	flags := pflag.NewFlagSet("generate", pflag.ContinueOnError)
	flags.String("var", "", "")
	require.NoError(suite.T(), flags.Parse([]string{"--var", "FromFlag"}))

	v := NewViper()
	require.NoError(suite.T(), v.BindPFlag("embed.variable", flags.Lookup("var")))

	cfg, err := Load(v, "")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "FromFlag", cfg.Embed.Variable)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	configPath := filepath.Join(suite.tempDir, "edfs.yaml")
	require.NoError(suite.T(), os.WriteFile(configPath, []byte("embed: [unclosed\n"), 0o644))

	cfg, err := LoadConfig(configPath)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)

	_, err = LoadConfig(filepath.Join(suite.tempDir, "missing.yaml"))
	assert.Error(suite.T(), err, "an explicit config path must exist")
}

func TestEmbedConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EmbedConfig)
		wantErr string
	}{
		{"defaults are valid", func(*EmbedConfig) {}, ""},
		{"unknown format", func(c *EmbedConfig) { c.Format = "yaml" }, "embed.format"},
		{"variable is not an identifier", func(c *EmbedConfig) { c.Variable = "my-var" }, "embed.variable"},
		{"package is not an identifier", func(c *EmbedConfig) { c.Package = "1pkg" }, "embed.package"},
		{"blank package", func(c *EmbedConfig) { c.Package = "_" }, "embed.package"},
		{"non-positive depth", func(c *EmbedConfig) { c.MaxDepth = 0 }, "embed.maxDepth"},
		{"negative workers", func(c *EmbedConfig) { c.Workers = -1 }, "embed.workers"},
		{"empty root", func(c *EmbedConfig) { c.Root = "" }, "embed.root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEmbedConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEmbedConfig_ResolvedPaths(t *testing.T) {
	cfg := DefaultEmbedConfig()
	cfg.Root = "assets"
	assert.Equal(t, "assets", cfg.ResolvedRoot())
	assert.Equal(t, "", cfg.ResolvedStripPrefix())

	cfg.BaseDir = "/work"
	cfg.StripPrefix = "."
	assert.Equal(t, filepath.Join("/work", "assets"), cfg.ResolvedRoot())
	assert.Equal(t, "/work", cfg.ResolvedStripPrefix())

	cfg.Root = "/abs/dir"
	assert.Equal(t, "/abs/dir", cfg.ResolvedRoot())
}
