// Command guardctl runs operational jobs against the marina guard database:
// migrations and the scheduled shift and timesheet generators.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
