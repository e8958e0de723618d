package preview

import (
	"context"

	"github.com/fredrikaverpil/uibundle/internal/watch"
	"github.com/fredrikaverpil/uibundle/pk"
)

// Watch returns a ListenFunc that reruns rebuild whenever files under dirs
// change. Rebuilds force tasks that already ran in this invocation; a
// failed rebuild is logged and watching continues.
func Watch(dirs []string, rebuild pk.Runnable) ListenFunc {
	return func(ctx context.Context, _ string) error {
		w, err := watch.New(watch.DefaultDelay)
		if err != nil {
			return err
		}
		defer w.Close()

		for _, dir := range dirs {
			if err := w.AddRecursive(pk.FromRoot(ctx, dir)); err != nil {
				return err
			}
		}

		log := pk.Logger(ctx)
		return w.Run(ctx,
			func(paths []string) {
				log.Info().Strs("changed", paths).Msg("Rebuilding")
				if err := pk.Run(pk.ContextWithForceRun(ctx), rebuild); err != nil {
					log.Error().Err(err).Msg("Rebuild failed")
				}
			},
			func(err error) {
				log.Warn().Err(err).Msg("Watch error")
			},
		)
	}
}
