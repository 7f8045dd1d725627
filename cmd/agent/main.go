package main

import "voicebrowser/internal/cli"

func main() {
	cli.Execute()
}
