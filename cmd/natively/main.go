package main

import "natively/cmd/natively/cmd"

func main() {
	cmd.Execute()
}
