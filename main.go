package main

import "github.com/sediment-db/sediment/internal/cli"

func main() {
	cli.Execute()
}
