// Package main — точка входа lecture-live (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/thereayou/lecture-live/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
