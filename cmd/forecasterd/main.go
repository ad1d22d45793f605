// Command forecasterd serves daily forecasts over http and runs the same forecasts offline from
// request files.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
