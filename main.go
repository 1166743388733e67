package main

import (
	"log"

	"github.com/avoronov/talentdir/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
