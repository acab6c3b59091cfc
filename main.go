package main

import "github.com/pders01/reflexion/cmd"

func main() {
	cmd.Execute()
}
