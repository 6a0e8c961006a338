package main

import (
	"log"
	"os"

	"tapodump/cmd"
	"tapodump/config"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration " + err.Error())
	}
	if err := cmd.Execute(cnf); err != nil {
		os.Exit(1)
	}
}
