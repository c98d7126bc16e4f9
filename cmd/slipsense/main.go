package main

import "github.com/oshokin/slipsense/cmd/slipsense/cmd"

func main() {
	cmd.Execute()
}
