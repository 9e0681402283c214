package main

import "github.com/olivier-w/coverflow/cmd"

func main() {
	cmd.Execute()
}
