package main

import "github.com/emiliopalmerini/modelcraft/internal/cli"

func main() {
	cli.Execute()
}
