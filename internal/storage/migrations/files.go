package migrations

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// sqlFiles lists the .sql files of dir in lexical (version) order.
func sqlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// version is the file name without its extension, e.g. "001_users".
func version(file string) string {
	return strings.TrimSuffix(file, ".sql")
}
