package main

import "github.com/nearblocks/txns-action/cmd"

func main() {
	cmd.Execute()
}
