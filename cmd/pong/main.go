package main

import "github.com/mcoot/netpong/internal/cli"

func main() {
	cli.Execute()
}
