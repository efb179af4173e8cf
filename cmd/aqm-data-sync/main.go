package main

import (
	"github.com/NOAA-EPIC/AQM-Eval/cmd/aqm-data-sync/cmd"
)

func main() {
	cmd.Execute()
}
