// Package publish uploads distribution artifacts to a package index using
// the index's legacy file-upload API: one multipart POST per artifact with
// the core metadata fields, content digests and the file itself.
package publish

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // the index API requires an md5 form digest
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	relerr "github.com/rusocsci/relkit/internal/errors"
	"github.com/rusocsci/relkit/internal/logfields"
	"github.com/rusocsci/relkit/internal/pkgmeta"
)

// Publisher uploads artifacts for one package release.
type Publisher struct {
	indexURL   string
	username   string
	password   string
	meta       *pkgmeta.Metadata
	httpClient *http.Client
}

// New creates a Publisher. A nil httpClient falls back to
// http.DefaultClient; upload timeouts are the client's business, not ours.
func New(indexURL, username, password string, meta *pkgmeta.Metadata, httpClient *http.Client) *Publisher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Publisher{
		indexURL:   indexURL,
		username:   username,
		password:   password,
		meta:       meta,
		httpClient: httpClient,
	}
}

// Uploaded describes one successfully uploaded artifact.
type Uploaded struct {
	Path     string
	Filetype string // "bdist_wheel" or "sdist"
	SHA256   string
}

// UploadAll uploads every distribution artifact currently present in
// distDir, in deterministic filename order. An empty dist directory is an
// error: there is nothing to publish.
func (p *Publisher) UploadAll(ctx context.Context, distDir string) ([]Uploaded, error) {
	var paths []string
	for _, pattern := range []string{"*.whl", "*.tar.gz"} {
		matches, err := filepath.Glob(filepath.Join(distDir, pattern))
		if err != nil {
			return nil, relerr.PublishFailed(pattern, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, relerr.New(relerr.CategoryPublish, relerr.SeverityFatal,
			"no distribution artifacts found").WithContext("dist_dir", distDir)
	}

	var uploaded []Uploaded
	for _, path := range paths {
		u, err := p.upload(ctx, path)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, u)
	}
	return uploaded, nil
}

// upload POSTs a single artifact. The index enforces duplicate-version
// policy; we do not pre-check.
func (p *Publisher) upload(ctx context.Context, path string) (Uploaded, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Uploaded{}, relerr.PublishFailed(name, err)
	}

	filetype, pyversion := classify(name)
	sha := sha256.Sum256(data)
	md := md5.Sum(data) //nolint:gosec // form field required by the API

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fields := map[string]string{
		":action":          "file_upload",
		"protocol_version": "1",
		"metadata_version": pkgmeta.CoreMetadataVersion,
		"name":             p.meta.Name,
		"version":          p.meta.Version,
		"summary":          p.meta.Summary,
		"filetype":         filetype,
		"pyversion":        pyversion,
		"sha256_digest":    hex.EncodeToString(sha[:]),
		"md5_digest":       hex.EncodeToString(md[:]),
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return Uploaded{}, relerr.PublishFailed(name, err)
		}
	}
	fw, err := mw.CreateFormFile("content", name)
	if err != nil {
		return Uploaded{}, relerr.PublishFailed(name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return Uploaded{}, relerr.PublishFailed(name, err)
	}
	if err := mw.Close(); err != nil {
		return Uploaded{}, relerr.PublishFailed(name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.indexURL, body)
	if err != nil {
		return Uploaded{}, relerr.PublishFailed(name, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if p.username != "" || p.password != "" {
		req.SetBasicAuth(p.username, p.password)
	}

	slog.Info("Uploading artifact", logfields.Artifact(name), logfields.IndexURL(p.indexURL))
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Uploaded{}, relerr.PublishFailed(name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		slog.Info("Uploaded artifact", logfields.Artifact(name))
		return Uploaded{Path: path, Filetype: filetype, SHA256: hex.EncodeToString(sha[:])}, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Uploaded{}, relerr.AuthFailed(p.indexURL).WithContext("artifact", name)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Uploaded{}, relerr.PublishFailed(name,
			fmt.Errorf("index returned %s: %s", resp.Status, strings.TrimSpace(string(msg))))
	}
}

// classify maps an artifact filename to the index's filetype and pyversion
// form fields.
func classify(filename string) (filetype, pyversion string) {
	if strings.HasSuffix(filename, ".whl") {
		// {name}-{version}-{pytag}-{abi}-{platform}.whl
		parts := strings.Split(strings.TrimSuffix(filename, ".whl"), "-")
		pyversion = "py2.py3"
		if len(parts) >= 3 {
			pyversion = parts[len(parts)-3]
		}
		return "bdist_wheel", pyversion
	}
	return "sdist", "source"
}

// ProjectURL returns the index's human-facing project page, used for manual
// metadata inspection before or after an upload.
func (p *Publisher) ProjectURL() string {
	u, err := url.Parse(p.indexURL)
	if err != nil {
		return ""
	}
	host := u.Host
	// The upload host conventionally maps to the browse host.
	host = strings.TrimPrefix(host, "upload.")
	return fmt.Sprintf("%s://%s/project/%s/", u.Scheme, host, pkgmeta.Normalize(p.meta.Name))
}
