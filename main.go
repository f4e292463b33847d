package main

import (
	"fmt"
	"os"
)

// Version information
const (
	Version = "0.1.0"
	Name    = "ArrowMex-Bridge"
)

func main() {
	fmt.Printf("%s v%s\n", Name, Version)
	fmt.Println("Arrow schema bridge for MEX-style hosts")
	fmt.Println("Run cmd/bridge-server to serve hosts")
	os.Exit(0)
}
