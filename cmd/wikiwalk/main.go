// Package main provides the entry point for the wikiwalk CLI.
//
// wikiwalk measures the "first link leads to Philosophy" phenomenon: it
// starts from random encyclopedia articles, repeatedly follows the first
// qualifying link in the article body, and records how often the chain
// reaches the target article.
//
// Usage:
//
//	wikiwalk run
//	wikiwalk run -n 1000 --markdown
//	wikiwalk stats --list
//
// See --help for all available options.
package main

// main is the entry point for wikiwalk.
func main() {
	Execute()
}
