package main

import "github.com/zfogg/citysearch/internal/cli/cmd"

func main() {
	cmd.Execute()
}
