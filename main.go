package main

import "github.com/CraigKelly/amwg/cmd"

func main() {
	cmd.Execute()
}
