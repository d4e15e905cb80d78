package main

import "github.com/MeKo-Tech/concretegen/internal/cmd"

func main() {
	cmd.Execute()
}
