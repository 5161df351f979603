package main

import "github.com/atelierlog/reportcard/cmd"

func main() {
	cmd.Execute()
}
