package smokefile

import (
	"errors"
	"os"
	"path/filepath"
)

// DefaultExt is appended to recording names.
const DefaultExt = ".dat"

// Locator resolves recording names against a list of directories.
type Locator struct {
	Dirs []string // searched in order
	Ext  string   // appended to names; DefaultExt when empty
}

func (l Locator) ext() string {
	if l.Ext == "" {
		return DefaultExt
	}
	return l.Ext
}

// Candidates lists the paths tried for name, in order.
func (l Locator) Candidates(name string) []string {
	if len(l.Dirs) == 0 {
		return []string{name + l.ext()}
	}
	paths := make([]string, 0, len(l.Dirs))
	for _, dir := range l.Dirs {
		paths = append(paths, filepath.Join(dir, name+l.ext()))
	}
	return paths
}

// Create truncates or creates name in the first directory that accepts it.
func (l Locator) Create(name string) (*os.File, string, error) {
	var errs []error
	for _, path := range l.Candidates(name) {
		f, err := os.Create(path)
		if err == nil {
			return f, path, nil
		}
		errs = append(errs, err)
	}
	return nil, "", &IOError{Op: "create", Path: name, Err: errors.Join(errs...)}
}

// Open opens name for reading. name is first tried as a path on its own,
// then in each directory with the extension appended.
func (l Locator) Open(name string) (*os.File, string, error) {
	errs := make([]error, 0, len(l.Dirs)+1)
	if f, err := os.Open(name); err == nil {
		if st, statErr := f.Stat(); statErr == nil && !st.IsDir() {
			return f, name, nil
		}
		f.Close()
	} else {
		errs = append(errs, err)
	}
	for _, path := range l.Candidates(name) {
		f, err := os.Open(path)
		if err == nil {
			return f, path, nil
		}
		errs = append(errs, err)
	}
	return nil, "", &IOError{Op: "open", Path: name, Err: errors.Join(errs...)}
}
