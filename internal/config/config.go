package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rusocsci/relkit/internal/pkgmeta"
)

// Config represents the application configuration
type Config struct {
	Package PackageConfig `yaml:"package"`
	Docs    DocsConfig    `yaml:"docs"`
	Index   IndexConfig   `yaml:"index"`
	Staging StagingConfig `yaml:"staging"`
	History HistoryConfig `yaml:"history"`
}

// PackageConfig declares the package being released. It replaces the
// packaging tool's ambient working-directory metadata discovery with an
// explicit declaration.
type PackageConfig struct {
	Name           string   `yaml:"name"`
	Version        string   `yaml:"version"` // explicit version, or "auto" to resolve from the latest git tag
	Summary        string   `yaml:"summary,omitempty"`
	Author         string   `yaml:"author,omitempty"`
	AuthorEmail    string   `yaml:"author_email,omitempty"`
	License        string   `yaml:"license,omitempty"`
	Homepage       string   `yaml:"homepage,omitempty"`
	Keywords       string   `yaml:"keywords,omitempty"`
	Classifiers    []string `yaml:"classifiers,omitempty"`
	Requires       []string `yaml:"requires,omitempty"`
	PythonRequires string   `yaml:"python_requires,omitempty"`
	Packages       []string `yaml:"packages"`
	Readme         string   `yaml:"readme,omitempty"`
	Changelog      string   `yaml:"changelog,omitempty"`
}

// DocsConfig controls documentation generation
type DocsConfig struct {
	Backend string `yaml:"backend,omitempty"` // "api" (introspective) or "site" (template build)
	Title   string `yaml:"title,omitempty"`
	Archive string `yaml:"archive,omitempty"` // archive filename placed in the working tree root
}

// IndexConfig identifies the package index uploads go to
type IndexConfig struct {
	URL      string `yaml:"url,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// StagingConfig controls where staging trees are created
type StagingConfig struct {
	BaseDir string `yaml:"base_dir,omitempty"` // defaults to the system temp directory
}

// HistoryConfig controls the run-history store
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Defaults applied after parsing.
const (
	DefaultDocsBackend = "api"
	DefaultDocsArchive = "doc.zip"
	DefaultIndexURL    = "https://upload.pypi.org/legacy/"
	DefaultHistoryPath = ".relkit/history.db"
)

// Load loads configuration from the specified file. Environment variables
// referenced in the YAML (e.g. ${RELKIT_INDEX_PASSWORD}) are expanded after
// .env files have been loaded, so credentials never need to live in the
// config file itself.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// loadEnvFiles loads .env files if present. Missing files are not an error;
// explicitly exported environment always wins (godotenv does not overwrite).
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Docs.Backend == "" {
		c.Docs.Backend = DefaultDocsBackend
	}
	if c.Docs.Archive == "" {
		c.Docs.Archive = DefaultDocsArchive
	}
	if c.Docs.Title == "" {
		c.Docs.Title = c.Package.Name
	}
	if c.Index.URL == "" {
		c.Index.URL = DefaultIndexURL
	}
	if c.History.Path == "" {
		c.History.Path = DefaultHistoryPath
	}
}

// Metadata converts the package section into the builder's metadata object.
func (c *Config) Metadata() *pkgmeta.Metadata {
	return &pkgmeta.Metadata{
		Name:           c.Package.Name,
		Version:        c.Package.Version,
		Summary:        c.Package.Summary,
		Author:         c.Package.Author,
		AuthorEmail:    c.Package.AuthorEmail,
		License:        c.Package.License,
		Homepage:       c.Package.Homepage,
		Keywords:       c.Package.Keywords,
		Classifiers:    c.Package.Classifiers,
		Requires:       c.Package.Requires,
		PythonRequires: c.Package.PythonRequires,
		Packages:       c.Package.Packages,
		ReadmePath:     c.Package.Readme,
		ChangelogPath:  c.Package.Changelog,
	}
}
