// Command recipeata is a shared recipe notebook with edit history and
// session undo.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/recipeata/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
