package moderation

import (
	"bufio"
	"io/fs"
	"path"
	"strings"

	"chat-relay/errors"
)

// LoadWords reads a dictionary from fsys. name may be a single file or a
// directory whose .txt files are merged. Blank lines are skipped and
// duplicates collapsed.
func LoadWords(fsys fs.FS, name string) ([]string, error) {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return nil, err
	}

	files := []string{name}
	if info.IsDir() {
		entries, err := fs.ReadDir(fsys, name)
		if err != nil {
			return nil, err
		}
		files = files[:0]
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txt") {
				files = append(files, path.Join(name, entry.Name()))
			}
		}
	}

	seen := make(map[string]struct{})
	var words []string
	for _, file := range files {
		f, err := fsys.Open(file)
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" {
				continue
			}
			if _, dup := seen[word]; !dup {
				seen[word] = struct{}{}
				words = append(words, word)
			}
		}
		scanErr := scanner.Err()
		_ = f.Close()
		if scanErr != nil {
			return nil, scanErr
		}
	}
	if len(words) == 0 {
		return nil, errors.ErrEmptyWords
	}
	return words, nil
}
