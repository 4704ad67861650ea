// Package main provides the entry point for the mediclaim CLI.
//
// mediclaim uploads a hospital discharge document (PDF, JPEG or PNG) to a
// MediClaim analysis service and renders the returned clinical extraction,
// insurance package recommendation and claim risk assessment.
//
// Usage:
//
//	mediclaim analyze discharge-summary.pdf
//	mediclaim health
//
// See --help for all available options.
package main

func main() {
	Execute()
}
