// Command seed loads the scheme catalogue into PostgreSQL and migrates
// legacy category values.
package main

import (
	"os"

	"github.com/atinyakov/schemeseva/internal/db"
)

func main() {
	if err := newRootCmd(db.InitPostgres).Execute(); err != nil {
		os.Exit(1)
	}
}
