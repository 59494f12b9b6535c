package main

import "github.com/lojasmm/tilebot/internal/cli"

func main() {
	cli.Execute()
}
