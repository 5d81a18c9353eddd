// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	apperrors "homesurvey/internal/common/errors"
	"homesurvey/pkg/registry"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	default:
		help()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runExport writes the embedded registry to a file so it can be edited and
// pointed at with registry.path.
func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	path := fs.String("path", "configs/activities.json", "Destination file")
	_ = fs.Parse(args)

	reg, err := registry.Default()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := reg.Save(*path); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	fmt.Printf("Exported %d activities to %s\n", len(reg.Activities), *path)
	return nil
}

func runUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := fs.String("path", "configs/activities.json", "Registry file to update")
	taskType := fs.String("taskType", "", "Task type of the activity")
	field := fs.String("field", "", "Field to update (status, version, timeout, retries, description)")
	value := fs.String("value", "", "New value for the field")
	_ = fs.Parse(args)

	if *taskType == "" || *field == "" || *value == "" {
		fs.Usage()
		return fmt.Errorf("taskType, field and value are required")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	activity, ok := reg.Find(*taskType)
	if !ok {
		return fmt.Errorf("no activity with taskType %s", *taskType)
	}
	if err := setField(activity, *field, *value); err != nil {
		return err
	}
	if problems := reg.Validate(knownCodes()); len(problems) > 0 {
		return fmt.Errorf("update leaves the registry invalid: %v", problems)
	}
	if err := reg.Save(*path); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	fmt.Printf("Updated %s: %s = %s\n", *taskType, *field, *value)
	return nil
}

func setField(a *registry.Activity, field, value string) error {
	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "description":
		a.Description = value
	case "timeout":
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", "", "Registry file (default: the embedded registry)")
	_ = fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}
	if problems := reg.Validate(knownCodes()); len(problems) > 0 {
		for _, p := range problems {
			fmt.Println("  -", p)
		}
		return fmt.Errorf("%d problems found", len(problems))
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func knownCodes() map[string]bool {
	codes := make(map[string]bool)
	for _, c := range apperrors.KnownCodes() {
		codes[string(c)] = true
	}
	return codes
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  export    Write the embedded registry to a file
  update    Update a field of one activity
  validate  Validate a registry file against the worker error codes
  help      Show this help message

Examples:
  registry-updater export -path configs/activities.json
  registry-updater update -path configs/activities.json -taskType persist-envelope -field timeout -value 20s
  registry-updater validate -path configs/activities.json`)
}
