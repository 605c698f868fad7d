package main

import "github.com/hmdtrack/ledtrack-go/cmd"

func main() {
	cmd.Execute()
}
