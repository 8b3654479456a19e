package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/reportcard/apps/di"
	"github.com/trezcool/reportcard/core"
)

func main() {
	conf := core.NewConfig()
	logger := di.NewLogger(conf, "ADMIN : ")

	c, err := di.New(context.Background(), conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up: %v", err), err)
	}

	cli := commandLine{
		c:    c,
		in:   os.Stdin,
		inFd: int(os.Stdin.Fd()),
		out:  os.Stdout,
	}
	err = cli.run(os.Args)
	if cerr := c.Close(); cerr != nil {
		logger.Error("Failed to close storage", cerr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		os.Exit(1)
	}
}
