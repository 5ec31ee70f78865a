// Command fungraph talks to a chat model from the terminal. It answers
// single questions (ask), runs an interactive session driven by a workflow
// graph (chat) and lists the configured tools (tools).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
