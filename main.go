package main

import "github.com/refi-auto/ms-go-accounts/cmd"

func main() {
	cmd.Execute()
}
