package main

import "sonique/cmd"

func main() {
	// Cobra owns the process exit code; a failing command exits itself.
	cmd.Execute()
}
