package main

import "github.com/gamehall/gamehall/internal/cli"

func main() {
	cli.Execute()
}
