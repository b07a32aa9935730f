package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "populate <plan-id>",
		Short: "Generate batches until the plan is complete",
		Long: "Repeatedly processes pending items in batches until none remain, --max-rounds is reached, " +
			"or a round makes no progress. Only one populate may run per plan on this host.",
		Args: cobra.ExactArgs(1),
		Run:  runPopulate,
	}
	cmd.Flags().IntP("size", "n", 0, "Batch size (default: pipeline.batch_size)")
	cmd.Flags().Int("max-rounds", -1, "Stop after this many batches, 0 for no limit (default: pipeline.max_rounds)")

	RootCmd.AddCommand(cmd)
}

func runPopulate(cmd *cobra.Command, args []string) {
	planID := args[0]
	size, _ := cmd.Flags().GetInt("size")
	maxRounds, _ := cmd.Flags().GetInt("max-rounds")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := newRuntime(ctx, true, false)
	defer rt.close()
	if size <= 0 {
		size = rt.cfg.Pipeline.BatchSize
	}
	if maxRounds < 0 {
		maxRounds = rt.cfg.Pipeline.MaxRounds
	}

	if err := os.MkdirAll(rt.cfg.Paths.LockDir, 0o755); err != nil {
		exitErr("create lock dir", err)
	}
	lock := flock.New(filepath.Join(rt.cfg.Paths.LockDir, "populate-"+planID+".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		exitErr("acquire lock", err)
	}
	if !ok {
		exitErr("acquire lock", fmt.Errorf("another populate is already running for plan %s", planID))
	}
	defer lock.Unlock()

	prog, err := rt.pipeline.Populate(ctx, planID, size, maxRounds)
	if err != nil && !errors.Is(err, context.Canceled) {
		exitErr("populate", err)
	}
	if err != nil {
		rt.log.Warn("populate interrupted", "plan_id", planID, "completed", prog.Completed)
	}
	printProgress(prog)
}
