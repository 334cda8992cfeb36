package main

import (
	"github.com/quincybot/rosterquiz/internal/cli"
)

func main() {
	cli.Execute()
}
