/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Entry point of the isadetect command-line tool. Builds the command tree and
runs it with a context cancelled on interrupt.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/isadetect/cmd/isadetect/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
