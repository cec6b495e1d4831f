package main

import "github.com/mselser95/finsight/cmd"

func main() {
	cmd.Execute()
}
