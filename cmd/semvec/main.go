package main

import "semvec/internal/cli"

func main() {
	cli.Execute()
}
