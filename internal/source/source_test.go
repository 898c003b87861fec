package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const content = "ISO-10303-21;\nHEADER;\nENDSEC;\nDATA;\n#1=CARTESIAN_POINT('',(0.,0.,0.));\nENDSEC;\nEND-ISO-10303-21;\n"

func gzipped(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func zipped(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// deterministic member order
	for _, name := range []string{"readme.txt", "model/house.ifc", "other.ifc"} {
		body, ok := members[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestDetect(t *testing.T) {
	assert.Equal(t, Plain, Detect([]byte(content)))
	assert.Equal(t, Gzip, Detect(gzipped(t, content)))
	assert.Equal(t, Zstd, Detect(zstded(t, content)))
	assert.Equal(t, Zip, Detect(zipped(t, map[string]string{"other.ifc": content})))
	assert.Equal(t, Plain, Detect(nil))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cases := map[string][]byte{
		"plain.stp":     []byte(content),
		"model.stp.gz":  gzipped(t, content),
		"model.ifc.zst": zstded(t, content),
		"house.ifczip": zipped(t, map[string]string{
			"readme.txt":      "not a model",
			"model/house.ifc": content,
		}),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeFile(t, path, data)
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, content, string(got))
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.stp"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "empty.ifczip")
	writeFile(t, path, zipped(t, map[string]string{"readme.txt": "x"}))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no STEP member")

	bad := filepath.Join(dir, "bad.stp.gz")
	writeFile(t, bad, append([]byte{0x1f, 0x8b}, []byte("garbage")...))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestIsStepFile(t *testing.T) {
	tests := map[string]bool{
		"a.step":    true,
		"a.STP":     true,
		"a.ifc":     true,
		"a.p21":     true,
		"a.stp.gz":  true,
		"a.ifc.zst": true,
		"a.ifczip":  true,
		"a.stpz":    true,
		"a.txt":     false,
		"a.gz":      false,
		"a.tar.zst": false,
		"ifc":       false,
		"a.ifc.bak": false,
	}
	for name, want := range tests {
		assert.Equal(t, want, IsStepFile(name), name)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"a.stp",
		"sub/b.ifc",
		"sub/c.ifc.gz",
		"sub/notes.txt",
		"build/out.stp",
		".hidden/d.stp",
		"skip/e.step",
		"sub/tmp_f.stp",
	} {
		writeFile(t, filepath.Join(root, rel), []byte(content))
	}
	writeFile(t, filepath.Join(root, ".gitignore"), []byte("build/\n"))

	got, err := Discover(root, []string{"skip", "tmp_*"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.stp"),
		filepath.Join(root, "sub/b.ifc"),
		filepath.Join(root, "sub/c.ifc.gz"),
	}, got)
}

func TestDiscoverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.txt")
	writeFile(t, path, []byte(content))
	got, err := Discover(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, got)

	_, err = Discover(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}
