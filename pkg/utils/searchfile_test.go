package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opst/labelkit/pkg/utils"
)

func TestSearchFileUpward(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(deep, 0700); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(root, "a", "marker")
	if err := os.WriteFile(target, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	// directory with the same name does not count
	if err := os.Mkdir(filepath.Join(root, "a", "b", "marker"), 0700); err != nil {
		t.Fatal(err)
	}

	found, ok := utils.SearchFileUpward(deep, "marker")
	if !ok || found != target {
		t.Errorf("found = (%s, %v), expected = %s", found, ok, target)
	}

	if _, ok := utils.SearchFileUpward(deep, "no-such-file-anywhere"); ok {
		t.Error("should not be found")
	}
}
