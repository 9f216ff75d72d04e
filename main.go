package main

import "github.com/KostasZigo/gogit-sync/cmd"

func main() {
	cmd.Execute()
}
