package archive

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/classdump/classfile"
)

// minimalClassBytes builds the smallest class file the decoder accepts: an
// empty constant pool, AccSuper, no fields/methods/interfaces/attributes.
func minimalClassBytes() []byte {
	var buf bytes.Buffer
	u2 := func(v uint16) { binary.Write(&buf, binary.BigEndian, v) }
	u4 := func(v uint32) { binary.Write(&buf, binary.BigEndian, v) }

	u4(classfile.Magic)
	u2(0)  // minor
	u2(52) // major
	u2(1)  // constant_pool_count (empty pool)
	u2(uint16(classfile.AccSuper))
	u2(0) // this_class
	u2(0) // super_class
	u2(0) // interfaces_count
	u2(0) // fields_count
	u2(0) // methods_count
	u2(0) // attributes_count
	return buf.Bytes()
}

func writeTestArchive(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jar")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	good, err := zw.Create("com/example/Good.class")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := good.Write(minimalClassBytes()); err != nil {
		t.Fatalf("write entry: %v", err)
	}

	bad, err := zw.Create("com/example/Bad.class")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := bad.Write([]byte{0x00, 0x00, 0x00, 0x00}); err != nil {
		t.Fatalf("write entry: %v", err)
	}

	readme, err := zw.Create("README.txt")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := readme.Write([]byte("not a class file")); err != nil {
		t.Fatalf("write entry: %v", err)
	}

	if _, err := zw.Create("com/example/"); err != nil {
		t.Fatalf("create dir entry: %v", err)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return path
}

func TestWalkDecodesClassEntriesAndSkipsOthers(t *testing.T) {
	path := writeTestArchive(t)

	result, err := Walk(path, classfile.ParseOptions{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(result.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(result.Entries))
	}
	if result.Entries[0].Name != "com/example/Good.class" {
		t.Fatalf("entry name = %q, want com/example/Good.class", result.Entries[0].Name)
	}
	if result.Entries[0].Class.MajorVersion != 52 {
		t.Fatalf("major version = %d, want 52", result.Entries[0].Class.MajorVersion)
	}

	if len(result.Failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(result.Failures))
	}
	if result.Failures[0].Name != "com/example/Bad.class" {
		t.Fatalf("failure name = %q, want com/example/Bad.class", result.Failures[0].Name)
	}
	if result.Failures[0].Error() == "" {
		t.Fatalf("Failure.Error() returned empty string")
	}
}

func TestWalkReturnsErrorForMissingArchive(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "does-not-exist.jar"), classfile.ParseOptions{})
	if err == nil {
		t.Fatalf("Walk: want error for missing archive, got nil")
	}
}

func TestResultNamesSorted(t *testing.T) {
	result := &Result{Entries: []Entry{
		{Name: "z/Z.class"},
		{Name: "a/A.class"},
		{Name: "m/M.class"},
	}}

	names := result.Names()
	want := []string{"a/A.class", "m/M.class", "z/Z.class"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
