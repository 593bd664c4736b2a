package main

import "github.com/skarthickct/cloud-formation/cmd"

func main() {
	cmd.Execute()
}
