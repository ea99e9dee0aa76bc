// SPDX-License-Identifier: MPL-2.0

package ivycache

import (
	"context"
	"path/filepath"

	"github.com/alfine/alfine/pkg/coord"
)

// Oracle is the external resolver that knows the authoritative metadata and
// artifact closure of every published module. Both operations are slow and
// may fail; the Cache calls each at most once per distinct query.
type Oracle interface {
	// FetchMetadata makes the ivy.xml descriptor of id available and returns
	// its path.
	FetchMetadata(ctx context.Context, id coord.Coordinate) (string, error)

	// Materialize resolves the artifact closure of id under confs and returns
	// the raw classpath output: one line of paths joined by the OS path list
	// separator.
	Materialize(ctx context.Context, id coord.Coordinate, confs []string) (string, error)
}

// MetadataPath returns where an Ivy cache rooted at cacheDir keeps the
// descriptor of id: <cacheDir>/<org>/<name>/ivy-<rev>.xml.
func MetadataPath(cacheDir string, id coord.Coordinate) string {
	return filepath.Join(cacheDir, string(id.Organization), string(id.Name), "ivy-"+string(id.Revision)+".xml")
}
