package main

import "github.com/peekknuf/dataqa/cmd"

func main() {
	cmd.Execute()
}
