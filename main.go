package main

import "ekiroute/cmd"

func main() {
	cmd.Execute()
}
