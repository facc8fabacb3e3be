package main

import "github.com/OpenTraceLab/OpenTracePLD/cmd/pldexport/cmd"

func main() {
	cmd.Execute()
}
