package main

import "github.com/kozaktomas/photo-appendix/cmd"

func main() {
	cmd.Execute()
}
