// Package clean removes generated files and folders.
package clean

import (
	"context"
	"fmt"
	"os"

	"github.com/fredrikaverpil/uibundle/pk"
)

// Remove returns a runnable that deletes each path under the project root.
// Paths that do not exist are skipped.
func Remove(paths ...string) pk.Runnable {
	return pk.Do(func(ctx context.Context) error {
		for _, p := range paths {
			abs := pk.FromRoot(ctx, p)
			if _, err := os.Lstat(abs); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return err
			}
			if err := os.RemoveAll(abs); err != nil {
				return fmt.Errorf("remove %s: %w", p, err)
			}
			pk.Printf(ctx, "Removed %s\n", p)
		}
		return nil
	})
}
