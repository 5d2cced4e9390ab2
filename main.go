package main

import "github.com/KaramelBytes/tabview-cli/cmd"

func main() {
	cmd.Execute()
}
