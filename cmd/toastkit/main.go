// Package main provides the CLI entrypoint for toastkit.
package main

func main() {
	Execute()
}
