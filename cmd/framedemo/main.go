// Command framedemo drives a frame coordinator over headless windows and
// optionally serves its Prometheus metrics.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "framedemo",
		Usage: "Render headless windows through the frame pipeline",
		Commands: []*cli.Command{
			RunCommand(),
			ParseCommand(),
		},
	}
}
