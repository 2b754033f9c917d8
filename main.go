// ABOUTME: Entry point for the glasswing engine CLI
// ABOUTME: Delegates to the cobra command tree
package main

import "github.com/glasswing-audio/glasswing/cmd"

func main() {
	cmd.Execute()
}
