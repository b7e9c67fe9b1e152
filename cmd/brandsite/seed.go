package main

import (
	"fmt"
	"os"

	"github.com/veridianfields/brandsite"
)

// runSeed loads carousels and content defaults from a JSON file. Existing
// content blocks are left alone unless --force is given; carousels are
// always upserted by slug.
func runSeed(args []string) error {
	var file string
	force := false
	for _, arg := range args {
		switch arg {
		case "--force", "-f":
			force = true
		default:
			if file != "" {
				return fmt.Errorf("unexpected argument: %s", arg)
			}
			file = arg
		}
	}
	if file == "" {
		return fmt.Errorf("usage: brandsite seed <file.json> [--force]")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	store, err := brandsite.NewStore(brandsite.EnvOr("DATABASE_PATH", "data/site.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := brandsite.Seed(store, data, force); err != nil {
		return err
	}
	fmt.Println("Seed complete.")
	return nil
}
