package main

import "github.com/mattismoel/trainingcal/cmd"

func main() {
	cmd.Execute()
}
