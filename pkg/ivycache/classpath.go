// SPDX-License-Identifier: MPL-2.0

package ivycache

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/alfine/alfine/pkg/coord"
)

// ResolveArtifacts returns the artifact paths that make up the classpath of
// id under confs, in oracle order. Results are memoized by coordinate and the
// set of configurations, so the oracle is asked at most once per query.
// Paths are substituted by same-named files from the local build directory.
func (c *Cache) ResolveArtifacts(ctx context.Context, id coord.Coordinate, confs ...string) ([]string, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if len(confs) == 0 {
		return nil, fmt.Errorf("classpath of %s: %w", id, ErrNoConfigurations)
	}
	if c.oracle == nil {
		return nil, fmt.Errorf("cannot resolve classpath of %s: %w", id, ErrInMemoryCache)
	}

	key := classpathKey(id, confs)
	if v, ok := c.classpaths.Get(key); ok {
		return c.substitute(v.([]string)), nil
	}

	v, err, _ := c.flights.Do("classpath:"+key, func() (any, error) {
		if v, ok := c.classpaths.Get(key); ok {
			return v, nil
		}
		normalized := normalizeConfs(confs)
		raw, err := c.oracle.Materialize(ctx, id, normalized)
		if err != nil {
			return nil, err
		}
		paths, err := parseClasspath(id, normalized, raw)
		if err != nil {
			return nil, err
		}
		c.classpaths.Set(key, paths, gocache.NoExpiration)
		c.logger.Info("resolved classpath", "module", id.String(), "confs", strings.Join(normalized, ","), "artifacts", len(paths))
		for _, p := range paths {
			c.logger.Debug("classpath entry", "module", id.String(), "path", p)
		}
		return paths, nil
	})
	if err != nil {
		return nil, err
	}
	return c.substitute(v.([]string)), nil
}

// substitute returns a copy of paths with every entry whose file name exists
// in the local build directory replaced by that file. Entries that collapse
// onto the same local file keep only their first position.
func (c *Cache) substitute(paths []string) []string {
	if c.localBuildDir == "" {
		return slices.Clone(paths)
	}
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		local := filepath.Join(c.localBuildDir, filepath.Base(p))
		if info, err := os.Stat(local); err == nil && !info.IsDir() {
			c.logger.Debug("using local build artifact", "artifact", filepath.Base(p), "path", local)
			p = local
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// PrefetchClasspaths resolves the classpaths of every module in waves, one
// wave after the other, with at most limit concurrent oracle queries inside a
// wave. A limit below one means no limit.
func (c *Cache) PrefetchClasspaths(ctx context.Context, waves [][]coord.Coordinate, confs []string, limit int) error {
	for _, wave := range waves {
		g, gctx := errgroup.WithContext(ctx)
		if limit > 0 {
			g.SetLimit(limit)
		}
		for _, id := range wave {
			g.Go(func() error {
				_, err := c.ResolveArtifacts(gctx, id, confs...)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// InstallArtifact copies a locally built artifact into the oracle cache next
// to the metadata of id and returns the destination path.
func (c *Cache) InstallArtifact(ctx context.Context, id coord.Coordinate, artifact string) (dst string, err error) {
	dir, err := c.LocationOf(ctx, id)
	if err != nil {
		return "", err
	}
	jars := filepath.Join(dir, "jars")
	if err := os.MkdirAll(jars, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", jars, err)
	}

	src, err := os.Open(artifact)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer src.Close()

	dst = filepath.Join(jars, filepath.Base(artifact))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dst, closeErr)
		}
	}()

	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("failed to copy artifact to %s: %w", dst, err)
	}
	c.logger.Info("installed artifact", "module", id.String(), "path", dst)
	return dst, nil
}

// parseClasspath splits the oracle's classpath output. The output must be
// exactly one non-blank line, optionally newline-terminated; any further line,
// blank or not, makes it ambiguous. Empty path entries are skipped and
// repeated entries keep their first position.
func parseClasspath(id coord.Coordinate, confs []string, raw string) ([]string, error) {
	var lines []string
	for line := range strings.Lines(raw) {
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	if len(lines) != 1 || strings.TrimSpace(lines[0]) == "" {
		return nil, &AmbiguousClasspathError{Module: id, Confs: confs, Lines: lines}
	}

	seen := make(map[string]bool)
	var paths []string
	for entry := range strings.SplitSeq(lines[0], string(filepath.ListSeparator)) {
		if entry = strings.TrimSpace(entry); entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		paths = append(paths, entry)
	}
	return paths, nil
}

func normalizeConfs(confs []string) []string {
	out := slices.Clone(confs)
	slices.Sort(out)
	return slices.Compact(out)
}

func classpathKey(id coord.Coordinate, confs []string) string {
	return id.String() + ";" + strings.Join(normalizeConfs(confs), ",")
}
