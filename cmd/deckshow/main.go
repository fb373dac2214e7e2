// Command deckshow presents decksh slide decks in the browser, in the
// terminal and to MCP clients.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
