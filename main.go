package main

import (
	cmd "github.com/Maryorwahmi/smc-forez/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
