package lexicon

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrEmptyWordList = errors.New("word list has no words")

// WordList is a lexicon backed by an in-memory set of words.
type WordList struct {
	name string

	mu    sync.RWMutex
	words map[string]struct{}
}

// NewWordList builds a lexicon from literal words.
func NewWordList(name string, words ...string) *WordList {
	wl := &WordList{name: name, words: make(map[string]struct{}, len(words))}
	upper := cases.Upper(language.Und)
	for _, w := range words {
		wl.words[upper.String(strings.TrimSpace(w))] = struct{}{}
	}
	return wl
}

// ScanWordList reads one word per line. Blank lines and lines starting
// with # are skipped.
func ScanWordList(name string, r io.Reader) (*WordList, error) {
	wl := &WordList{name: name, words: map[string]struct{}{}}
	upper := cases.Upper(language.Und)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Some word lists carry definitions after the word.
		if i := strings.IndexAny(line, " \t"); i > 0 {
			line = line[:i]
		}
		wl.words[upper.String(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(wl.words) == 0 {
		return nil, ErrEmptyWordList
	}
	return wl, nil
}

// LoadWordList reads a word list file. The lexicon is named after the file.
func LoadWordList(path string) (*WordList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word list: %w", err)
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	wl, err := ScanWordList(name, f)
	if err != nil {
		return nil, fmt.Errorf("reading word list %s: %w", path, err)
	}
	log.Info().Str("lexicon", name).Int("words", wl.Size()).Msg("loaded-word-list")
	return wl, nil
}

func (wl *WordList) Name() string {
	return wl.name
}

func (wl *WordList) IsValid(word string) bool {
	wl.mu.RLock()
	defer wl.mu.RUnlock()
	_, ok := wl.words[word]
	return ok
}

func (wl *WordList) Size() int {
	wl.mu.RLock()
	defer wl.mu.RUnlock()
	return len(wl.words)
}

// Add inserts words at runtime.
func (wl *WordList) Add(words ...string) {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	for _, w := range words {
		wl.words[strings.ToUpper(w)] = struct{}{}
	}
}

// Remove deletes words at runtime.
func (wl *WordList) Remove(words ...string) {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	for _, w := range words {
		delete(wl.words, strings.ToUpper(w))
	}
}
