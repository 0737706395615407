package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relerr "github.com/rusocsci/relkit/internal/errors"
	"github.com/rusocsci/relkit/internal/pkgmeta"
)

func publishMeta() *pkgmeta.Metadata {
	return &pkgmeta.Metadata{
		Name:     "RuSocSci",
		Version:  "0.8.5",
		Summary:  "Response box support",
		Packages: []string{"rusocsci"},
	}
}

func makeDist(t *testing.T, names ...string) string {
	t.Helper()
	dist := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dist, name), []byte("artifact: "+name), 0o644))
	}
	return dist
}

type received struct {
	fields   map[string]string
	filename string
	content  []byte
	user     string
	pass     string
}

func uploadServer(t *testing.T, status int, got *[]received) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		rec := received{fields: map[string]string{}}
		for key, values := range r.MultipartForm.Value {
			rec.fields[key] = values[0]
		}
		file, hdr, err := r.FormFile("content")
		require.NoError(t, err)
		rec.filename = hdr.Filename
		rec.content, err = io.ReadAll(file)
		require.NoError(t, err)
		_ = file.Close()
		rec.user, rec.pass, _ = r.BasicAuth()
		*got = append(*got, rec)
		w.WriteHeader(status)
	}))
}

func TestUploadAll(t *testing.T) {
	var got []received
	srv := uploadServer(t, http.StatusOK, &got)
	defer srv.Close()

	dist := makeDist(t, "rusocsci-0.8.5-py2.py3-none-any.whl", "rusocsci-0.8.5.tar.gz")
	pub := New(srv.URL, "wilbert", "secret", publishMeta(), srv.Client())

	uploaded, err := pub.UploadAll(context.Background(), dist)
	require.NoError(t, err)
	require.Len(t, uploaded, 2)
	require.Len(t, got, 2)

	// Wheel first (sorted), then sdist.
	wheel := got[0]
	assert.Equal(t, "file_upload", wheel.fields[":action"])
	assert.Equal(t, "RuSocSci", wheel.fields["name"])
	assert.Equal(t, "0.8.5", wheel.fields["version"])
	assert.Equal(t, "bdist_wheel", wheel.fields["filetype"])
	assert.Equal(t, "py2.py3", wheel.fields["pyversion"])
	assert.Equal(t, "rusocsci-0.8.5-py2.py3-none-any.whl", wheel.filename)
	assert.Equal(t, "wilbert", wheel.user)
	assert.Equal(t, "secret", wheel.pass)

	sum := sha256.Sum256(wheel.content)
	assert.Equal(t, hex.EncodeToString(sum[:]), wheel.fields["sha256_digest"])

	sdist := got[1]
	assert.Equal(t, "sdist", sdist.fields["filetype"])
	assert.Equal(t, "source", sdist.fields["pyversion"])
}

func TestUploadAllEmptyDist(t *testing.T) {
	pub := New("http://unused.invalid/", "", "", publishMeta(), nil)
	_, err := pub.UploadAll(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, relerr.IsCategory(err, relerr.CategoryPublish))
}

func TestUploadAuthRejected(t *testing.T) {
	var got []received
	srv := uploadServer(t, http.StatusForbidden, &got)
	defer srv.Close()

	dist := makeDist(t, "rusocsci-0.8.5-py2.py3-none-any.whl")
	pub := New(srv.URL, "wilbert", "wrong", publishMeta(), srv.Client())

	_, err := pub.UploadAll(context.Background(), dist)
	require.Error(t, err)
	assert.True(t, relerr.IsCategory(err, relerr.CategoryAuth))
}

func TestUploadDuplicateRejected(t *testing.T) {
	var got []received
	srv := uploadServer(t, http.StatusBadRequest, &got)
	defer srv.Close()

	dist := makeDist(t, "rusocsci-0.8.5.tar.gz")
	pub := New(srv.URL, "wilbert", "secret", publishMeta(), srv.Client())

	// The remote index rejects re-uploads; the publisher just reports it.
	_, err := pub.UploadAll(context.Background(), dist)
	require.Error(t, err)
	assert.True(t, relerr.IsCategory(err, relerr.CategoryPublish))
}

func TestProjectURL(t *testing.T) {
	pub := New("https://upload.pypi.org/legacy/", "", "", publishMeta(), nil)
	assert.Equal(t, "https://pypi.org/project/rusocsci/", pub.ProjectURL())
}

func TestClassify(t *testing.T) {
	ft, py := classify("rusocsci-0.8.5-py3-none-any.whl")
	assert.Equal(t, "bdist_wheel", ft)
	assert.Equal(t, "py3", py)

	ft, py = classify("rusocsci-0.8.5.tar.gz")
	assert.Equal(t, "sdist", ft)
	assert.Equal(t, "source", py)
}
