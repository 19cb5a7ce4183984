// Command scd trains linear regression models with minibatched stochastic
// coordinate descent.
//
//	scd train --config run.yaml
//	scd train --format libsvm --data train.svm --samples 10000 --features 54 --trainer parallel --workers 8
//	scd generate --samples 4096 --features 32 --out synthetic.txt
//	scd info
package main

import (
	"fmt"
	"os"
)

var (
	version   = "0.1.0"
	commit    = "dev"
	buildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
