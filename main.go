package main

import "github.com/theirongolddev/greenlint/cmd"

func main() {
	cmd.Execute()
}
