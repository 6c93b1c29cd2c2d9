package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/autoops/backend/cmd"
)

func main() {
	// SIGINT/SIGTERM 수신 시 서버 종료, worker는 pass 사이에서 종료
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
