package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agiangrant/lattice/config"
)

// Init implements the 'lattice init' command
func Init(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	name := fs.String("name", "", "Project name")
	dir := fs.String("dir", ".", "Project directory")
	force := fs.Bool("force", false, "Overwrite an existing lattice.toml")
	fs.Parse(args)

	return initProject(*dir, *name, *force)
}

func initProject(dir, name string, force bool) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	// Get project name from args or the directory
	projectName := strings.TrimSpace(name)
	if projectName == "" {
		projectName = filepath.Base(abs)
	}

	path := filepath.Join(abs, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
	}

	fmt.Printf("Initializing lattice project: %s\n", projectName)

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", abs, err)
	}

	cfg := config.Default()
	cfg.App.Name = projectName
	cfg.App.Title = projectName
	if err := config.Save(abs, cfg); err != nil {
		return err
	}
	fmt.Printf("  ✓ Created %s\n", config.FileName)
	return nil
}
