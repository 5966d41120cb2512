package main

import (
	"fmt"

	"github.com/Swind/go-frame-pipeline/core"
	"github.com/urfave/cli/v2"
)

func ParseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Aliases:   []string{"p"},
		Usage:     "Show how threading models are interpreted",
		ArgsUsage: "MODEL...",

		Action: ParseAction,
	}
}

func ParseAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("at least one threading model is required", 1)
	}

	for _, arg := range c.Args().Slice() {
		m := core.ParseThreadingModel(arg)
		fmt.Fprintf(c.App.Writer, "%q: cull=%q draw=%q cull-sorting=%t\n",
			arg, m.CullName, m.DrawName, m.CullSorting)
	}
	return nil
}
