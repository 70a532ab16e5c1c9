package main

import (
	"archive/tar"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/pgzip"
)

// ExtractArchive unpacks a gzipped tarball into dir, stripping the leading
// path component so the archive's wrapper folder does not end up in dir.
func ExtractArchive(archive string, dir string) error {
	Logger.Infof("extracting %v to %v", archive, dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create extraction directory %v", dir)
	}
	file, err := os.Open(archive)
	if err != nil {
		return errors.Wrapf(err, "open archive %v", archive)
	}
	defer file.Close()

	gz, err := pgzip.NewReader(file)
	if err != nil {
		return errors.Wrapf(err, "decompress archive %v", archive)
	}
	defer gz.Close()

	reader := tar.NewReader(gz)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "read archive %v", archive)
		}
		name, ok, err := stripWrapper(header.Name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(name))
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, header.FileInfo().Mode().Perm()); err != nil {
				return errors.Wrapf(err, "create directory %v", target)
			}
		case tar.TypeReg:
			if err := extractFile(target, header, reader); err != nil {
				return err
			}
		default:
			// dataset archives hold plain files and directories only
		}
	}
}

// stripWrapper drops the first path component and rejects entries that
// would land outside the extraction directory.
func stripWrapper(name string) (string, bool, error) {
	clean := path.Clean(strings.TrimPrefix(name, "./"))
	if clean == "." || clean == "/" {
		return "", false, nil
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false, errors.Newf("archive entry %q escapes the extraction directory", name)
	}
	rest := ""
	if idx := strings.IndexByte(clean, '/'); idx >= 0 {
		rest = clean[idx+1:]
	}
	if rest == "" {
		return "", false, nil
	}
	if !filepath.IsLocal(filepath.FromSlash(rest)) {
		return "", false, errors.Newf("archive entry %q escapes the extraction directory", name)
	}
	return rest, true, nil
}

func extractFile(target string, header *tar.Header, reader io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "create directory %v", filepath.Dir(target))
	}
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, header.FileInfo().Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "create file %v", target)
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		return errors.Wrapf(err, "write file %v", target)
	}
	return errors.Wrapf(file.Close(), "close file %v", target)
}
