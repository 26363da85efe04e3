package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveTreeDeletesReadOnlyEntries(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	nested := filepath.Join(root, "bucket", "objects")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	readOnly := filepath.Join(nested, "object.bin")
	if err := os.WriteFile(readOnly, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(readOnly, 0o400); err != nil {
		t.Fatal(err)
	}
	// Read-only directory blocks plain RemoveAll on the entry beneath it.
	if err := os.Chmod(nested, 0o500); err != nil {
		t.Fatal(err)
	}

	if err := RemoveTree(root); err != nil {
		t.Fatalf("RemoveTree failed: %v", err)
	}

	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("expected %q removed, stat err=%v", root, err)
	}
}

func TestRemoveTreeMissingRootIsNoop(t *testing.T) {
	root := filepath.Join(t.TempDir(), "never-created")
	if err := RemoveTree(root); err != nil {
		t.Fatalf("expected no error for missing root, got %v", err)
	}
}

func TestMakeTreeWritableRestoresWriteBits(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "locked.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(file, 0o444); err != nil {
		t.Fatal(err)
	}

	if err := MakeTreeWritable(root); err != nil {
		t.Fatalf("MakeTreeWritable failed: %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o200 == 0 {
		t.Fatalf("expected owner write bit, got %o", info.Mode().Perm())
	}
}

func TestMakeTreeWritableMissingRootIsNoop(t *testing.T) {
	if err := MakeTreeWritable(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Fatalf("expected no error for missing root, got %v", err)
	}
}
