package main

import "github.com/alapierre/sortjson/internal/cli"

func main() {
	cli.Main()
}
