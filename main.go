package main

import "github.com/jmehdipour/dialer/cmd"

func main() {
	cmd.Execute()
}
