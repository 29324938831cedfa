package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"loopsite/application/designed"
	"loopsite/domain/pages"
	"loopsite/domain/slots"
	"loopsite/infrastructure/persistence/seed"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file|dir>...",
		Short: "Strictly validate seed files",
		Long: `Decodes every page, post and slot file strictly and checks it against
the designed pages. Directories are scanned recursively. Exits non-zero if
any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := expandSeedArgs(args)
	if err != nil {
		return err
	}
	registry := designed.Default()
	out := cmd.OutOrStdout()

	failed := 0
	for _, file := range files {
		page, overrides, err := seed.LoadFile(file)
		if err == nil {
			bundle := &seed.Bundle{Slots: overrides}
			if page != nil {
				bundle.Pages = []*pages.Page{page}
			}
			err = bundle.Check(registry)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s\n", file)
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "     %s\n", line)
			}
			continue
		}
		fmt.Fprintf(out, "ok   %s%s\n", file, describe(page, overrides))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(files))
	}
	return nil
}

func describe(page *pages.Page, overrides map[string]slots.Overrides) string {
	var parts []string
	if page != nil {
		parts = append(parts, fmt.Sprintf("page /%s, %d sections", page.Path, len(page.Sections)))
	}
	for path, o := range overrides {
		parts = append(parts, fmt.Sprintf("slots /%s, %d overrides", path, len(o)))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}

// expandSeedArgs turns globs and directories into a list of seed files
func expandSeedArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				files = append(files, match)
				continue
			}
			err = filepath.WalkDir(match, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isSeedExt(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return files, nil
}

func isSeedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".md", ".markdown":
		return true
	}
	return false
}
