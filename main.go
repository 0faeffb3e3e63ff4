package main

import (
	"floral-studio-server/cmd"
)

func main() {
	cmd.Execute()
}
