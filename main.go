package main

import "github.com/drivelink/backoffice/cmd"

func main() {
	cmd.Execute()
}
