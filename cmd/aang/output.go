package main

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/aanlab/aang/internal/gender"
)

// printer formats counts with thousands separators in human output.
var printer = message.NewPrinter(language.English)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	printer.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if flushLogs != nil {
		flushLogs()
	}
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CountResponse reports how many items a command handled.
type CountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Path   string `json:"path,omitempty"`
}

// printResultHuman prints one classification as "name: gender (source, detail)".
func printResultHuman(r gender.Result) {
	if r.Detail != "" {
		outputHuman("%s: %s (%s, %s)\n", r.Name, r.Gender, r.Source, r.Detail)
		return
	}
	outputHuman("%s: %s (%s)\n", r.Name, r.Gender, r.Source)
}

// percent formats a share in [0,1] as a percentage.
func percent(share float64) string {
	return printer.Sprintf("%.1f%%", share*100)
}
