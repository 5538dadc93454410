package main

import "github.com/phildougherty/quick-assistant/internal/cmd"

// version is stamped by the release build
var version = "dev"

func main() {
	cmd.Execute(version)
}
