package main

import "github.com/GICristian/YouTube-Clip-Generator/internal/cli"

func main() {
	cli.Main()
}
