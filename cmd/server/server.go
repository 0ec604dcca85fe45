// Package main is the entry point of the tamuroo-server application.
package main

import (
	"tamuroo-server/internal"
)

func main() {
	internal.Execute()
}
