// Command atelier launches the multi-mode AI writing workspace.
package main

import "github.com/atelier-dev/atelier/internal/cli"

func main() {
	cli.Execute()
}
