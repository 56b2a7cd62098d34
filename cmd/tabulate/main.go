// Command tabulate computes standings offline from a ballot file and mints
// API tokens.
package main

import (
	"log"
	"os"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
