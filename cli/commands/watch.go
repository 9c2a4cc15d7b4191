package commands

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/schemaplan/schemaplan/cli/internal/ui"
	"github.com/schemaplan/schemaplan/cli/internal/watch"
)

// newWatchCommand creates the watch command.
func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the models and preview pending changes on save",
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}

	printers := ui.GetColorPrinters()
	watcher, err := watch.NewWatcher(store.ModelsDir(), []string{".json", ".yaml", ".yml"}, func() error {
		ui.ColorPrint(printers["info"], "[%s] diffing models\n", time.Now().Format("15:04:05"))
		if err := runDiff(cmd, args); err != nil {
			ui.PrintError("%v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Start(); err != nil {
		return err
	}
	ui.PrintInfo("Watching %s/ for changes, press Ctrl+C to stop", store.ModelsDir())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}
