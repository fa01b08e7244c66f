// Command bullscows starts the Bulls & Cows lobby/game server.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
