// sahayak is a welfare scheme directory: search Indian government schemes,
// ask questions in plain English or Hindi, and check eligibility.
package main

import (
	"os"

	"github.com/corey/sahayak/cmd/sahayak/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
