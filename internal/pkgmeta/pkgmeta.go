// Package pkgmeta models the metadata of the Python package being released:
// the fields a setup.py would declare, plus the naming rules the packaging
// ecosystem imposes on distribution filenames.
package pkgmeta

import (
	"fmt"
	"regexp"
	"strings"

	relerr "github.com/rusocsci/relkit/internal/errors"
)

// Metadata describes one releasable package. It is an explicit configuration
// object: the builder never discovers metadata from the process working
// directory.
type Metadata struct {
	Name           string
	Version        string
	Summary        string
	Author         string
	AuthorEmail    string
	License        string
	Homepage       string
	Keywords       string
	Classifiers    []string
	Requires       []string
	PythonRequires string

	// Packages lists the importable top-level package directories relative
	// to the source tree root (e.g. "rusocsci").
	Packages []string

	// ReadmePath and ChangelogPath are relative to the source tree root.
	// The readme becomes the long description in METADATA.
	ReadmePath    string
	ChangelogPath string
}

// versionPattern is the canonical form of a public version identifier
// (release segment with optional pre/post/dev parts). Local version labels
// are not accepted for publishable artifacts.
var versionPattern = regexp.MustCompile(
	`^([0-9]+!)?[0-9]+(\.[0-9]+)*((a|b|rc)[0-9]+)?(\.post[0-9]+)?(\.dev[0-9]+)?$`)

// nonNormalChars matches the character runs that filename escaping collapses.
var (
	normalizeRuns = regexp.MustCompile(`[-_.]+`)
	escapeRuns    = regexp.MustCompile(`[^A-Za-z0-9.]+`)
)

// Normalize applies the package-index name normalization: runs of dash,
// underscore and dot collapse to a single dash, and the result is lowercased.
func Normalize(name string) string {
	return strings.ToLower(normalizeRuns.ReplaceAllString(name, "-"))
}

// escapeForFilename makes a name safe for embedding in a distribution
// filename: runs of characters outside [A-Za-z0-9.] become a single
// underscore. Distribution filenames additionally use the normalized
// (lowercased) form so a given release maps to exactly one filename.
func escapeForFilename(name string) string {
	return escapeRuns.ReplaceAllString(Normalize(name), "_")
}

// ValidVersion reports whether v is an acceptable public version identifier.
func ValidVersion(v string) bool {
	return versionPattern.MatchString(v)
}

// Validate checks that the metadata is sufficient to build and publish.
func (m *Metadata) Validate() error {
	if m.Name == "" {
		return relerr.ConfigRequired("package.name")
	}
	if m.Version == "" {
		return relerr.ConfigRequired("package.version")
	}
	if !ValidVersion(m.Version) {
		return relerr.ValidationFailed("package.version",
			fmt.Sprintf("%q is not a valid public version identifier", m.Version))
	}
	if len(m.Packages) == 0 {
		return relerr.ConfigRequired("package.packages")
	}
	return nil
}

// WheelTag is the compatibility tag for the built wheel. The tool only
// builds pure-Python wheels.
func (m *Metadata) WheelTag() string {
	if strings.HasPrefix(strings.TrimSpace(m.PythonRequires), ">=3") {
		return "py3-none-any"
	}
	return "py2.py3-none-any"
}

// WheelFilename returns the canonical wheel filename for this release,
// e.g. "rusocsci-0.8.5-py2.py3-none-any.whl".
func (m *Metadata) WheelFilename() string {
	return fmt.Sprintf("%s-%s-%s.whl", escapeForFilename(m.Name), m.Version, m.WheelTag())
}

// SdistFilename returns the canonical source distribution filename,
// e.g. "rusocsci-0.8.5.tar.gz".
func (m *Metadata) SdistFilename() string {
	return fmt.Sprintf("%s-%s.tar.gz", escapeForFilename(m.Name), m.Version)
}

// DistInfoDir returns the wheel's metadata directory name,
// e.g. "rusocsci-0.8.5.dist-info".
func (m *Metadata) DistInfoDir() string {
	return fmt.Sprintf("%s-%s.dist-info", escapeForFilename(m.Name), m.Version)
}

// SdistRoot returns the top-level directory name inside the sdist tarball.
func (m *Metadata) SdistRoot() string {
	return fmt.Sprintf("%s-%s", escapeForFilename(m.Name), m.Version)
}
