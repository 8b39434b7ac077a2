// Package archive reads theme bundles: zip archives carrying stylesheets
// together with the images they reference.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// WalkFunc is called for every matching file of the bundle with the entry name
// and its content. If an error is returned, processing stops.
type WalkFunc func(name string, data []byte) error

// Stylesheets matches stylesheet entries by extension.
func Stylesheets(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".qss", ".css":
		return true
	}
	return false
}

// Walk visits files of the archive accepted by match in archive order.
// Entries with absolute paths or ".." components make the whole bundle
// invalid.
func Walk(archive string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !match(name) {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", name, err)
		}
		if err := walkFn(name, data); err != nil {
			return err
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
