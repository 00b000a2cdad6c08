package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rezonia/invoice-builder/internal/paginator"
)

// collectFiles expands globs and directories into files with one of exts
func collectFiles(args []string, exts ...string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}

			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && hasExt(path, exts) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() && hasExt(match, exts) {
				files = append(files, match)
			}
		}
	}

	return files, nil
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func parseImageFormat(s string) (paginator.ImageFormat, error) {
	switch strings.ToLower(s) {
	case "png":
		return paginator.FormatPNG, nil
	case "jpeg", "jpg":
		return paginator.FormatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported image format: %s", s)
	}
}
