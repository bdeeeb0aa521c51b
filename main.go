package main

import "github.com/eccowas/admitgen/cmd"

func main() {
	cmd.Execute()
}
