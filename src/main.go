package main

import (
	"flag"
	"log"
	"strings"

	"kfpComponents/src/config"
)

var (
	operation = flag.String("op", "run", "run/create/show/delete/task, default is run")
	cfgPath   = flag.String("cfg", "", "config path")
	compName  = flag.String("component", "make_numeric_dataset", "component name for run operation")
	rows      = flag.Int("rows", 0, "row count for run operation, 0 uses the configured value")
	schema    = flag.String("schema", "", "CREATE TABLE file for make_tabular_dataset")
	session   = flag.String("session", "", "session name for task operation")
	threads   = flag.Int("threads", 16, "threads")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	switch strings.ToLower(*operation) {
	case "run":
		if err := RunComponent(cfg, *compName, *rows, *schema); err != nil {
			log.Fatalf("Failed to run component: %v", err)
		}
	case "create":
		if err := CreateFiles(cfg, *threads); err != nil {
			log.Fatalf("Failed to create files: %v", err)
		}
	case "show":
		if err := ShowFiles(cfg); err != nil {
			log.Fatalf("Failed to show files: %v", err)
		}
	case "delete":
		if err := DeleteAllFiles(cfg); err != nil {
			log.Fatalf("Failed to delete files: %v", err)
		}
	case "task":
		if *session == "" {
			log.Fatalf("Session (-session) must be specified for task operation")
		}
		if err := RunTask(cfg, *session); err != nil {
			log.Fatalf("Failed to run session %s: %v", *session, err)
		}
	default:
		log.Fatalf("Unknown operation: %s", *operation)
	}
}
