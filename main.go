package main

import "github.com/iksnae/openup-cli/cmd"

func main() {
	cmd.Execute()
}
