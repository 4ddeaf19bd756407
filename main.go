package main

import "github.com/aallbrig/swarmui/cmd"

func main() {
	cmd.Execute()
}
