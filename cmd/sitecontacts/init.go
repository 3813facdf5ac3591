package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fwojciec/sitecontacts"
	"github.com/fwojciec/sitecontacts/batch"
	"github.com/fwojciec/sitecontacts/fs"
	"github.com/fwojciec/sitecontacts/xlsx"
)

// Run executes the init command.
func (c *InitCmd) Run(deps *Dependencies) error {
	path := c.Input
	if path == "" {
		found, err := FindInput(deps.Dir)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
			return err
		}
		path = found
	}

	reader, err := tableReader(path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}
	t, err := reader.ReadTable(deps.Ctx, path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}
	hash, err := batch.FingerprintFile(path)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}

	res, err := deps.Orchestrator.Setup(deps.Ctx, t, relativeTo(deps.Dir, path), hash, c.Force)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecontacts.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Loaded %d rows from %s\n", res.Rows, path)
	fmt.Fprintf(deps.Stdout, "Created %d chunks of up to %d rows\n", res.Chunks, deps.Orchestrator.ChunkSize)
	fmt.Fprintf(deps.Stdout, "Run 'sitecontacts process -n N' to start scraping\n")
	return nil
}

// FindInput returns the only CSV or XLSX file in dir/input.
func FindInput(dir string) (string, error) {
	inputDir := filepath.Join(dir, fs.InputDir)
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", sitecontacts.Errorf(sitecontacts.ENOTFOUND, "input directory not found: %s", inputDir)
		}
		return "", err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if isTableFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)

	switch len(names) {
	case 0:
		return "", sitecontacts.Errorf(sitecontacts.ENOTFOUND, "no CSV or XLSX file in %s", inputDir)
	case 1:
		return filepath.Join(inputDir, names[0]), nil
	default:
		return "", sitecontacts.Errorf(sitecontacts.EINVALID,
			"several input files in %s (%s); pass one explicitly", inputDir, strings.Join(names, ", "))
	}
}

func isTableFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

func tableReader(path string) (sitecontacts.TableReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return fs.NewCSVReader(), nil
	case ".xlsx", ".xlsm":
		return xlsx.NewReader(), nil
	}
	return nil, sitecontacts.Errorf(sitecontacts.EINVALID, "unsupported input format: %s", path)
}

// relativeTo returns path relative to dir when it lies inside it.
func relativeTo(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
