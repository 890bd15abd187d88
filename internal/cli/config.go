package cli

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/maliboot/colaup/internal/errors"
	"github.com/maliboot/colaup/internal/utils"
	"github.com/maliboot/colaup/internal/utils/fileops"
)

// DefaultPaths are the role subdirectories holding migratable classes.
var DefaultPaths = []string{
	"Client/Dto/Command",
	"Client/Dto/Query",
	"Client/ViewObject",
	"Domain/Model",
	"Infra/DataObject",
}

// Config holds the configuration for a migration run
type Config struct {
	// Dir is the directory to migrate, relative to BasePath unless absolute
	Dir string `mapstructure:"dir"`

	// BasePath is the project root. colaup.yml is looked up here.
	BasePath string `mapstructure:"base"`

	// Paths restricts discovery to files whose relative path contains one of these
	Paths []string `mapstructure:"paths"`

	// DryRun prints diffs instead of writing files
	DryRun bool `mapstructure:"dry-run"`

	// KeepGoing collects failures instead of stopping at the first one
	KeepGoing bool `mapstructure:"keep-going"`

	// RespectGitignore skips files matched by the directory's .gitignore
	RespectGitignore bool `mapstructure:"respect-gitignore"`

	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
	LogJSON bool `mapstructure:"log-json"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Dir:      "module",
		BasePath: ".",
		Paths:    append([]string(nil), DefaultPaths...),
	}
}

// SetDefaults registers the default configuration on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("dir", d.Dir)
	v.SetDefault("base", d.BasePath)
	v.SetDefault("paths", d.Paths)
	v.SetDefault("dry-run", false)
	v.SetDefault("keep-going", false)
	v.SetDefault("respect-gitignore", false)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("log-json", false)
}

// LoadConfig resolves the configuration from v. Flags bound to v win over
// COLAUP_* environment variables, which win over the config file. The file
// is configFile when set, otherwise an optional colaup.yml in the base path.
func LoadConfig(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("COLAUP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapConfigurationError(configFile, "read", err)
		}
	} else {
		v.SetConfigName("colaup")
		v.SetConfigType("yaml")
		v.AddConfigPath(v.GetString("base"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.WrapConfigurationError("colaup.yml", "read", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapConfigurationError("colaup", "decode", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var pathsValidator = utils.NewValidatorChain(
	utils.SliceNotEmpty[string]("paths"),
	utils.ValidateEach("paths", utils.NewValidatorChain(
		utils.NotBlank("path"),
		utils.Custom("path", "cannot leave the dir", func(p string) bool {
			return !slices.Contains(strings.Split(filepath.ToSlash(p), "/"), "..")
		}),
	).Validate),
)

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	if err := utils.NotBlank("dir")(c.Dir); err != nil {
		return errors.ConfigurationError("dir", err.Error())
	}
	if err := pathsValidator.Validate(c.Paths); err != nil {
		return errors.ConfigurationError("paths", err.Error())
	}
	return nil
}

// SourceDir returns the absolute directory to migrate.
func (c *Config) SourceDir() (string, error) {
	base := c.BasePath
	if base == "" {
		base = "."
	}
	return fileops.NewPathValidator().Resolve(base, c.Dir)
}

// DiagnosticLevel maps the verbosity flags to a diagnostic level.
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	return utils.LevelFromFlags(c.Verbose, c.Quiet)
}
