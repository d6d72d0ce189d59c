package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cinemind/cinemind/internal/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}
	switch {
	case api.IsStatus(err, http.StatusUnauthorized):
		fmt.Fprintln(os.Stderr, "hint: run 'cinemind api users login' or pass --token")
	case api.IsStatus(err, http.StatusForbidden):
		fmt.Fprintln(os.Stderr, "hint: this command needs an account listed in auth.admin_emails")
	}
	os.Exit(1)
}
