package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Init writes an example configuration file to configPath. Existing files
// are preserved unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Package: PackageConfig{
			Name:           "RuSocSci",
			Version:        "0.8.5",
			Summary:        "Support package for response box hardware, with PsychoPy-like API.",
			Author:         "Wilbert van Ham",
			AuthorEmail:    "w.vanham@socsci.ru.nl",
			License:        "GPLv3+",
			Homepage:       "https://www.socsci.ru.nl/wilberth/python/rusocsci.html",
			Keywords:       "hardware",
			Classifiers:    []string{"Development Status :: 4 - Beta"},
			Requires:       []string{"pyserial"},
			PythonRequires: ">=2.6",
			Packages:       []string{"rusocsci"},
			Readme:         "README",
			Changelog:      "CHANGES",
		},
		Docs: DocsConfig{
			Backend: DefaultDocsBackend,
			Archive: DefaultDocsArchive,
		},
		Index: IndexConfig{
			URL:      DefaultIndexURL,
			Username: "${RELKIT_INDEX_USERNAME}",
			Password: "${RELKIT_INDEX_PASSWORD}",
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
