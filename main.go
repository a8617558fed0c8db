package main

import "github.com/frahmantamala/workforce-presence/cmd"

func main() {
	cmd.Execute()
}
