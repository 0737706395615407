package wheel

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// record accumulates the RECORD rows for a wheel under construction.
type record struct {
	rows []string
}

func newRecord() *record {
	return &record{}
}

// add registers a hashed file. The digest format is
// "sha256=" + urlsafe_b64encode_nopad(sha256(data)).
func (r *record) add(name string, data []byte) {
	sum := sha256.Sum256(data)
	digest := base64.RawURLEncoding.EncodeToString(sum[:])
	r.rows = append(r.rows, fmt.Sprintf("%s,sha256=%s,%d", name, digest, len(data)))
}

// addUnhashed registers a file with empty digest and size fields. Only
// RECORD itself is listed this way, since it cannot contain its own hash.
func (r *record) addUnhashed(name string) {
	r.rows = append(r.rows, fmt.Sprintf("%s,,", name))
}

func (r *record) render() string {
	return strings.Join(r.rows, "\n") + "\n"
}
