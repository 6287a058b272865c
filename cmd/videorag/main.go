package main

import "videorag/internal/cli"

func main() {
	cli.Execute()
}
