package main

import "github.com/oshokin/sim-notifier/cmd/notifier-sim/cmd"

func main() {
	cmd.Execute()
}
