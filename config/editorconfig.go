package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TabWidth returns the display width of a tab for filePath, taken from the
// nearest .editorconfig sections that match it (tab_width, then
// indent_size), or fallback when none set one.
func TabWidth(filePath string, fallback int) int {
	props := editorConfigFor(filePath)
	for _, key := range []string{"tab_width", "indent_size"} {
		if n, err := strconv.Atoi(props[key]); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// editorConfigFor merges the properties of every .editorconfig from the
// file's directory up to the first one marked root. Closer files win.
func editorConfigFor(filePath string) map[string]string {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil
	}
	name := filepath.Base(absPath)

	var chain []map[string]string
	for dir := filepath.Dir(absPath); ; {
		props, root := readEditorConfig(filepath.Join(dir, ".editorconfig"), name)
		if props != nil {
			chain = append(chain, props)
		}
		if root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	merged := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i] {
			merged[k] = v
		}
	}
	return merged
}

// readEditorConfig returns the properties of sections in path whose glob
// matches name, and whether the file declares root = true.
func readEditorConfig(path, name string) (map[string]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	props := make(map[string]string)
	root := false
	section := ""
	matched := false

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		if line[0] == '[' && line[len(line)-1] == ']' {
			section = line[1 : len(line)-1]
			matched = globMatch(section, name)
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))
		switch {
		case section == "" && key == "root":
			root = value == "true"
		case matched:
			props[key] = value
		}
	}
	if len(props) == 0 {
		return nil, root
	}
	return props, root
}

// globMatch matches name against an editorconfig section glob, expanding
// one level of {a,b} alternatives.
func globMatch(pattern, name string) bool {
	lb := strings.IndexByte(pattern, '{')
	rb := strings.IndexByte(pattern, '}')
	if lb < 0 || rb < lb {
		ok, _ := filepath.Match(pattern, name)
		return ok
	}
	for _, alt := range strings.Split(pattern[lb+1:rb], ",") {
		if globMatch(pattern[:lb]+alt+pattern[rb+1:], name) {
			return true
		}
	}
	return false
}
