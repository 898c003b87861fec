package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	".stepgraph":   {},
}

// Discover returns the STEP files under root, sorted, as paths joined to
// root. A root that is itself a file is returned as is. Hidden entries,
// paths matched by root/.gitignore and paths matched by any of the
// gitignore-style exclude patterns are skipped.
func Discover(root string, exclude []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	gi := loadGitignore(root)
	var ex *ignore.GitIgnore
	if len(exclude) > 0 {
		ex = ignore.CompileIgnoreLines(exclude...)
	}

	var results []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		ignored := matches(gi, ex, rel)

		if d.IsDir() {
			ignored = ignored || matches(gi, ex, rel+"/")
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") || ignored {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 || ignored {
			return nil
		}
		if IsStepFile(name) {
			results = append(results, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

func matches(gi, ex *ignore.GitIgnore, rel string) bool {
	return (gi != nil && gi.MatchesPath(rel)) || (ex != nil && ex.MatchesPath(rel))
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
