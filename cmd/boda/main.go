package main

import "github.com/mcoot/bodaform/internal/cli"

func main() {
	cli.Execute()
}
