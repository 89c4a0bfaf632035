// Command check_hycu is a Nagios/Icinga/Centreon plugin that monitors a
// HYCU backup controller through its REST API.
package main

import (
	"os"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
