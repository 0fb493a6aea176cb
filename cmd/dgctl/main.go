package main

import "github.com/lmerrick/dashguard/internal/cli"

func main() {
	cli.Execute()
}
