package main

import "github.com/analogrelay/go-native-export/internal/cli"

func main() {
	cli.Execute()
}
