// Package database implements the flat binary persistence format for the
// early-game lower/upper bound caches: each file is a headerless sequence
// of 64-bit little-endian packed bound words.
package database

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hailam/c4solve/internal/board"
	"github.com/hailam/c4solve/internal/engine"
)

// DatabaseIOError is wrapped into every error returned for an os/io failure
// while reading or writing a database file. The underlying error's text is
// part of the message; the underlying error itself is not wrapped.
var DatabaseIOError = errors.New("database: io error")

// LowerBoundFileName and UpperBoundFileName match the original's on-disk
// file names.
const (
	LowerBoundFileName = "lower_bound_database.bin"
	UpperBoundFileName = "upper_bound_database.bin"
)

// ReadFile loads every packed bound-word entry from filename into cache,
// unconditionally replacing any existing entry for that fingerprint. A
// missing file is an I/O error; an existing, empty file is permitted and
// yields zero entries.
func ReadFile(filename string, cache *engine.SharedBoundMap) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", DatabaseIOError, filename, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var word [8]byte
	for {
		_, err := io.ReadFull(r, word[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", DatabaseIOError, filename, err)
		}
		fingerprint, bound := board.UnpackBoundWord(binary.LittleEndian.Uint64(word[:]))
		cache.Replace(fingerprint, int8(bound))
	}
	return nil
}

// WriteFile dumps every entry of cache to filename as packed bound words, in
// whatever order Range visits them (the format carries no count, header, or
// checksum, and readers don't depend on ordering).
func WriteFile(filename string, cache *engine.SharedBoundMap) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", DatabaseIOError, filename, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	var word [8]byte
	var rangeErr error
	cache.Range(func(fingerprint uint64, bound int8) {
		if rangeErr != nil {
			return
		}
		binary.LittleEndian.PutUint64(word[:], board.PackBoundWord(fingerprint, int(bound)))
		if _, err := w.Write(word[:]); err != nil {
			rangeErr = err
		}
	})
	if rangeErr != nil {
		return fmt.Errorf("%w: writing %s: %v", DatabaseIOError, filename, rangeErr)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flushing %s: %v", DatabaseIOError, filename, err)
	}
	return nil
}

// LoadCaches populates caches' early-game lower/upper maps from dir's two
// database files.
func LoadCaches(dir string, caches *engine.Caches) error {
	if err := ReadFile(filepath.Join(dir, LowerBoundFileName), caches.LowerShared); err != nil {
		return err
	}
	if err := ReadFile(filepath.Join(dir, UpperBoundFileName), caches.UpperShared); err != nil {
		return err
	}
	return nil
}

// SaveCaches writes caches' early-game lower/upper maps to dir's two
// database files.
func SaveCaches(dir string, caches *engine.Caches) error {
	if err := WriteFile(filepath.Join(dir, LowerBoundFileName), caches.LowerShared); err != nil {
		return err
	}
	if err := WriteFile(filepath.Join(dir, UpperBoundFileName), caches.UpperShared); err != nil {
		return err
	}
	return nil
}
