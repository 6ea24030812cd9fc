package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rhonimohanraj/anti-bot/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{
		Verbose:    isVerbose(),
		ConfigPath: os.Getenv("ANTIBOT_CONFIG"),
	}

	root := cli.NewRootCmd(ctx, opts)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func isVerbose() bool {
	v := os.Getenv("ANTIBOT_DEBUG")
	return strings.EqualFold(v, "1") || strings.EqualFold(v, "true")
}
