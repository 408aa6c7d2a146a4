package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"github.com/samber/lo"

	"telechat/errors"
)

// WordList is the merged content of every language dictionary, with the
// language codes kept for startup logging.
type WordList struct {
	Words     []string
	Languages []string
}

// Loader reads blacklisted words from dictionaries embedded in the binary,
// one .txt file per language.
type Loader struct {
	fs embed.FS
}

func NewLoader(f embed.FS) *Loader {
	return &Loader{fs: f}
}

// LoadAll scans the given directory, treating every file as a dictionary
// named after its language ("fr.txt" -> "fr"), and merges their lines into
// one deduplicated word list. An empty result is an error: a moderation
// setup with nothing to censor is a packaging mistake.
func (l *Loader) LoadAll(path string) (WordList, error) {
	entries, err := fs.ReadDir(l.fs, path)
	if err != nil {
		return WordList{}, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		if err := l.readWords(path+"/"+entry.Name(), uniqueWords); err != nil {
			return WordList{}, err
		}
	}

	if len(uniqueWords) == 0 {
		return WordList{}, errors.ErrEmptyWordList
	}

	return WordList{Words: lo.Keys(uniqueWords), Languages: languages}, nil
}

// readWords collects the non-blank lines of one dictionary into the shared
// set. A scanner handles both \n and \r\n line endings.
func (l *Loader) readWords(name string, into map[string]struct{}) error {
	data, err := l.fs.ReadFile(name)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			into[line] = struct{}{}
		}
	}
	return scanner.Err()
}
