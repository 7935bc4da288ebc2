package main

import (
	"context"
	"os"

	"github.com/cratesweep/cratesweep/pkg/cli"
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := cli.NewConfig()
	cfg.Version = version

	c := cli.NewCLI(cfg)
	if err := c.Execute(context.Background(), os.Args[1:]); err != nil {
		c.PrintError(err)
		os.Exit(cli.ExitCode(err))
	}
}
