package s3load

import (
	"fmt"
	"path/filepath"
	"strings"

	gut "github.com/panyam/goutils/utils"
	"github.com/spf13/afero"
)

// Config holds the settings a Site can be created from.  It is usually read from
// a toml, yaml or json file with LoadConfig.
type Config struct {
	// Source root
	Src string `mapstructure:"src"`

	// Includes directory within Src
	Includes string `mapstructure:"includes"`

	// Per extension includes directories, eg {".css": "_styles"}
	IncludePaths map[string]string `mapstructure:"include_paths"`

	// Number of pages loaded concurrently
	Workers int `mapstructure:"workers"`

	// Whether pages without a date fall back to file times (defaults to true)
	FileDates *bool `mapstructure:"file_dates"`

	// Watch Src for changes
	Watch bool `mapstructure:"watch"`

	// Address to serve the inspection api on
	ServeAddr string `mapstructure:"serve_addr"`
}

// Decoders for config files, by extension.
func ConfigLoaders() *Extensions[Loader] {
	return NewExtensions[Loader]().
		Set(".toml", TOMLLoader).
		SetAll([]string{".yml", ".yaml"}, YAMLLoader).
		Set(".json", JSONLoader).
		Seal()
}

// Reads a config file, picking the decoder by the file's extension.  Relative or
// missing Src values are resolved against the config file's directory.
func LoadConfig(fs afero.Fs, configPath string) (config Config, err error) {
	configPath = expandUser(configPath)
	_, loader, found := ConfigLoaders().Search(configPath)
	if !found {
		return config, fmt.Errorf("unsupported config file type: %s", configPath)
	}
	content, err := afero.ReadFile(fs, configPath)
	if err != nil {
		return config, err
	}
	data, err := loader(configPath, content)
	if err != nil {
		return config, err
	}
	if err = data.Decode(&config); err != nil {
		return config, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	// without a src the config file's directory is the source root
	config.Src = expandUser(config.Src)
	if !filepath.IsAbs(config.Src) {
		config.Src = filepath.Join(filepath.Dir(configPath), config.Src)
	}
	return
}

func expandUser(p string) string {
	if strings.HasPrefix(p, "~") {
		return gut.ExpandUserPath(p)
	}
	return p
}

// Creates an uninitialized Site from the config.
func (c Config) NewSite(fs afero.Fs) *Site {
	site := &Site{
		SrcDir:       c.Src,
		IncludesDir:  c.Includes,
		IncludePaths: c.IncludePaths,
		Workers:      c.Workers,
		Fs:           fs,
	}
	if c.FileDates != nil && !*c.FileDates {
		site.NoFileDates = true
	}
	return site
}
