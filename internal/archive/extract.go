// Package archive extracts selected members from an in-memory zip archive.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoMatchingFiles is returned when no archive member matches the
// accepted suffixes.
var ErrNoMatchingFiles = errors.New("no matching files in archive")

// Extract opens data as a zip archive and returns the members whose name
// ends with any of the accepted suffixes, each read fully into memory.
// Suffix comparison is case-insensitive. Directory entries are skipped.
// No size limits are enforced; the input is caller-trusted.
func Extract(data []byte, suffixes []string) (map[string][]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	files := make(map[string][]byte)
	for _, member := range reader.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if !matchesSuffix(member.Name, suffixes) {
			continue
		}

		content, err := readMember(member)
		if err != nil {
			return nil, fmt.Errorf("read archive member %s: %w", member.Name, err)
		}
		files[member.Name] = content
	}

	if len(files) == 0 {
		return nil, ErrNoMatchingFiles
	}
	return files, nil
}

func matchesSuffix(name string, suffixes []string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

func readMember(member *zip.File) ([]byte, error) {
	rc, err := member.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
