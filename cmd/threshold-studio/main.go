package main

import "threshold-studio/internal/cli"

func main() {
	cli.Execute()
}
