// Package main provides the CLI entrypoint for pling.
package main

func main() {
	Execute()
}
