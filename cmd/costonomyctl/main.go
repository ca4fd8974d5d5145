// Command costonomyctl runs recipe scaling from the terminal against the
// Costonomy API.
package main

import (
	"fmt"
	"os"

	applog "github.com/flavourheaven/costonomy/internal/log"
)

func main() {
	err := newRootCmd(newApp(os.Stdout)).Execute()
	_ = applog.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
