package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sable-lang/sable/internal/cli"
	"github.com/sable-lang/sable/internal/watch"
)

// watch evaluates path once and again after every change until ctx ends.
func (d *driver) watch(ctx context.Context, path string) int {
	w, err := watch.New(path, watch.DefaultDebounce, d.logger)
	if err != nil {
		cli.PrintError(d.stderr, err)
		return 1
	}
	defer w.Close()

	d.runFiles(ctx, []string{path}, false)
	d.logger.Info("watching %s", w.Path())

	err = w.Run(ctx, func(ev watch.Event) {
		fmt.Fprintf(d.stdout, "== change detected at %s\n", ev.Time.Format("15:04:05"))
		d.runFiles(ctx, []string{path}, false)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		cli.PrintError(d.stderr, err)
		return 1
	}
	return 0
}
