package content

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/searchrc/pkg/scan"
)

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func writeTarGz(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range members {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err = tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}

func TestFileSource_Lines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\r\nthree\n"), 0644))

	lines, err := (&FileSource{Path: path}).Lines()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestFileSource_SkipsBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")
	require.NoError(t, os.WriteFile(path, []byte("nee\x00dle\n"), 0644))

	lines, err := (&FileSource{Path: path}).Lines()
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestFileSource_SkipsOversize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxFileSize+1))
	require.NoError(t, f.Close())

	lines, err := (&FileSource{Path: path}).Lines()
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := (&FileSource{Path: filepath.Join(t.TempDir(), "absent.txt")}).Lines()
	require.Error(t, err)
}

func TestFileSource_InvalidUTF8Replaced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latin1.txt")
	require.NoError(t, os.WriteFile(path, []byte("caf\xe9\n"), 0644))

	lines, err := (&FileSource{Path: path}).Lines()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "caf�", lines[0])
}

func TestZipMemberSource_Lines(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	writeZip(t, archive, map[string]string{"hello.txt": "needle\nhaystack\n"})

	lines, err := (&ZipMemberSource{Archive: archive, Member: "hello.txt"}).Lines()
	require.NoError(t, err)
	assert.Equal(t, []string{"needle", "haystack"}, lines)

	_, err = (&ZipMemberSource{Archive: archive, Member: "absent.txt"}).Lines()
	require.Error(t, err)
}

func TestTarMemberSource_Lines(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.tar.gz")
	writeTarGz(t, archive, map[string]string{"docs/hello.txt": "needle\n"})

	lines, err := (&TarMemberSource{Archive: archive, Member: "docs/hello.txt"}).Lines()
	require.NoError(t, err)
	assert.Equal(t, []string{"needle"}, lines)

	_, err = (&TarMemberSource{Archive: archive, Member: "absent.txt"}).Lines()
	require.Error(t, err)
}

func TestNewSource_Variants(t *testing.T) {
	assert.IsType(t, &FileSource{}, NewSource(scan.Candidate{Path: "a.txt"}))
	assert.IsType(t, &ZipMemberSource{}, NewSource(scan.Candidate{Path: "a.zip", IsArchive: true, Member: "m"}))
	assert.IsType(t, &TarMemberSource{}, NewSource(scan.Candidate{Path: "a.tgz", IsArchive: true, Member: "m"}))
	assert.IsType(t, &TarMemberSource{}, NewSource(scan.Candidate{Path: "a.tar.gz", IsArchive: true, Member: "m"}))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "valid_passthrough", data: []byte("caf\xc3\xa9"), want: "café"},
		{name: "single_invalid_byte", data: []byte("caf\xe9"), want: "caf�"},
		{name: "one_rune_per_invalid_byte", data: []byte("a\xff\xfe\xfdb"), want: "a���b"},
		{name: "truncated_multibyte_sequence", data: []byte("ab\xc3"), want: "ab�"},
		{name: "empty", data: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.data))
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "no_trailing_newline", text: "a\nb", want: []string{"a", "b"}},
		{name: "trailing_newline", text: "a\nb\n", want: []string{"a", "b"}},
		{name: "crlf", text: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "blank_interior_lines", text: "a\n\nb\n", want: []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitLines(tt.text))
		})
	}
}

func TestPreview_Truncation(t *testing.T) {
	long := "  " + strings.Repeat("x", 300) + "  "
	got := preview(long)
	assert.Len(t, []rune(got), 200)
	assert.NotContains(t, got, " ")
}
