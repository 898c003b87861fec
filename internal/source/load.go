// Package source reads STEP input files, transparently unpacking the
// compressed and zipped forms exchange files are often shipped in, and
// finds such files under a directory.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Container names how an input was packed.
type Container string

const (
	Plain Container = "plain"
	Gzip  Container = "gzip"
	Zstd  Container = "zstd"
	Zip   Container = "zip"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	zipMagic  = []byte("PK\x03\x04")
)

// Detect identifies the container from the leading bytes of data.
func Detect(data []byte) Container {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	case bytes.HasPrefix(data, zipMagic):
		return Zip
	default:
		return Plain
	}
}

// Load reads path and returns the STEP text inside it. Gzip and zstd
// streams are decompressed; for a zip archive (IFCZIP) the first member
// with a STEP extension is returned.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Unpack returns the STEP text inside data.
func Unpack(data []byte) ([]byte, error) {
	switch Detect(data) {
	case Gzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return out, nil
	case Zstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		out, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	case Zip:
		return unzip(data)
	default:
		return data, nil
	}
}

func unzip(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !hasStepExt(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("zip member %s: %w", f.Name, err)
		}
		out, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zip member %s: %w", f.Name, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("zip: no STEP member (.step, .stp, .ifc, .p21)")
}

var stepExts = map[string]struct{}{
	".step": {},
	".stp":  {},
	".ifc":  {},
	".p21":  {},
}

var packedExts = map[string]struct{}{
	".gz":     {},
	".zst":    {},
	".ifczip": {},
	".stpz":   {},
}

func hasStepExt(name string) bool {
	_, ok := stepExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// IsStepFile reports whether name looks like a STEP input: a STEP
// extension, optionally followed by .gz or .zst, or an IFCZIP/STPZ file.
func IsStepFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := stepExts[ext]; ok {
		return true
	}
	if _, ok := packedExts[ext]; !ok {
		return false
	}
	if ext == ".ifczip" || ext == ".stpz" {
		return true
	}
	return hasStepExt(strings.TrimSuffix(name, filepath.Ext(name)))
}
