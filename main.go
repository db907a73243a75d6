package main

import "github.com/KaramelBytes/dataloom/cmd"

func main() {
	cmd.Execute()
}
