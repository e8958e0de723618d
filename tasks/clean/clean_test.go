package clean

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fredrikaverpil/uibundle/pk"
)

func TestRemove(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"build/ui-bundle.zip", "public/_/css/site.css", "src/css/site.css"} {
		if err := pk.WriteFile(filepath.Join(root, f), []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	var stdout bytes.Buffer
	ctx := pk.ContextWithRoot(context.Background(), root)
	ctx = pk.ContextWithOutput(ctx, &pk.Output{Stdout: &stdout, Stderr: &bytes.Buffer{}})

	task := pk.NewTask("clean", "", Remove("build", "public", "missing"))
	if err := pk.Run(ctx, task); err != nil {
		t.Fatal(err)
	}

	for _, gone := range []string{"build", "public"} {
		if _, err := os.Stat(filepath.Join(root, gone)); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed", gone)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "src", "css", "site.css")); err != nil {
		t.Error("expected sources to be kept")
	}

	want := ":: clean\nRemoved build\nRemoved public\n"
	if got := stdout.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
