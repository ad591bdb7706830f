// Package main provides popd, the proof-of-participation API server:
// - serve: HTTP API, live claim feed, metrics
// - migrate: prepare the configured storage and analytics backends
// - version: build information
package main

func main() {
	Execute()
}
