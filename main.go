package main

import "github.com/user/catalogs/cmd"

func main() {
	cmd.Execute()
}
