// Command succd is the interactive CLI front end for the succession-
// diagram analyzer: it parses a Boolean network, builds its succession
// diagram, identifies attractors, and answers control queries.
package main

import "github.com/sdlab/succd/cmd/succd/cmd"

func main() {
	cmd.Execute()
}
