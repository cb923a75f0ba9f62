package main

import "github.com/inovacc/git-backup/cmd"

func main() {
	cmd.Execute()
}
