package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"pathbench/pkg/apperror"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, env{
		args:     os.Args[1:],
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		registry: prometheus.DefaultRegisterer,
	})
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "pathbench: %v\n", err)
	}
	os.Exit(apperror.ExitCode(err))
}
