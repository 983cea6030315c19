package market

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ReadExcludedTraders читает имена по одному в строке, пустые строки пропускаются.
func ReadExcludedTraders(r io.Reader) ([]string, error) {
	var traders []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			traders = append(traders, name)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner.Scan: %w", err)
	}

	return traders, nil
}

// LoadExcludedTraders читает список из файла; отсутствие файла — пустой список.
func LoadExcludedTraders(path string) ([]string, error) {
	fh, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer fh.Close()

	return ReadExcludedTraders(fh)
}
