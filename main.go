package main

import "github.com/sarchlab/phold/cmd"

func main() {
	cmd.Execute()
}
