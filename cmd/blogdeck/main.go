package main

import "github.com/blogdeck/blogdeck/cli/internal/cmd"

func main() {
	cmd.Execute()
}
