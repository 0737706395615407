package pkgmeta

import (
	"fmt"
	"strings"
)

// CoreMetadataVersion is the metadata format version written into METADATA
// and PKG-INFO files.
const CoreMetadataVersion = "2.1"

// CoreMetadata renders the email-header style core metadata document shared
// by the wheel's METADATA file and the sdist's PKG-INFO file. longDescription
// is the readme body; it is appended after a blank line per the metadata
// format.
func (m *Metadata) CoreMetadata(longDescription string) string {
	var b strings.Builder
	write := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}
	write("Metadata-Version", CoreMetadataVersion)
	write("Name", m.Name)
	write("Version", m.Version)
	write("Summary", m.Summary)
	write("Home-page", m.Homepage)
	write("Author", m.Author)
	write("Author-email", m.AuthorEmail)
	write("License", m.License)
	write("Keywords", m.Keywords)
	for _, c := range m.Classifiers {
		write("Classifier", c)
	}
	write("Requires-Python", m.PythonRequires)
	for _, r := range m.Requires {
		write("Requires-Dist", r)
	}
	if longDescription != "" {
		b.WriteString("\n")
		b.WriteString(longDescription)
		if !strings.HasSuffix(longDescription, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
