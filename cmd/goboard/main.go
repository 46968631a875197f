package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/basket/go-board/internal/audit"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "v0.1-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var se *startupError
	if errors.As(err, &se) {
		fatalStartup(se.logger, se.code, se.err)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// fatalStartup records a startup failure with its reason code and exits.
func fatalStartup(logger *slog.Logger, reasonCode string, err error) {
	message := ""
	if err != nil {
		message = err.Error()
	}
	audit.Record("startup.failed", reasonCode, message)
	_ = audit.Close()

	if logger != nil {
		logger.Error("startup failure", "reason_code", reasonCode, "error", message)
	}
	fmt.Fprintf(
		os.Stderr,
		`{"timestamp":"%s","level":"ERROR","component":"board","msg":"startup failure","reason_code":%q,"error":%q}`+"\n",
		time.Now().UTC().Format(time.RFC3339Nano),
		reasonCode,
		message,
	)
	os.Exit(1)
}
