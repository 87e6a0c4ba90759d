package mtk

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Every MediaTek Download Agent file starts with a fixed-size header
// (0x39DC = 14812 bytes). The header is opaque here: its fields are
// interpreted by other tooling, these functions only move it around.
const HeaderLength = 0x39DC

// Copy everything after the fixed header of source into out. A source
// shorter than the header produces an empty body rather than an error.
// Returns the number of header bytes actually skipped and the number of
// body bytes written.
func ExtractBody(source io.Reader, out io.Writer) (int64, int64, error) {
	skipped, err := io.CopyN(io.Discard, source, HeaderLength)
	if err != nil && err != io.EOF {
		return skipped, 0, fmt.Errorf("skip header: %w", err)
	}
	written, err := io.Copy(out, source)
	if err != nil {
		return skipped, written, fmt.Errorf("copy body: %w", err)
	}
	return skipped, written, nil
}

// Write the header of source followed by the full contents of body into
// out. Only the first HeaderLength bytes of source are ever read; a source
// shorter than that contributes whatever it has. Returns the number of
// header and body bytes written.
func MergeBody(source io.Reader, body io.Reader, out io.Writer) (int64, int64, error) {
	headerLength, err := io.CopyN(out, source, HeaderLength)
	if err != nil && err != io.EOF {
		return headerLength, 0, fmt.Errorf("copy header: %w", err)
	}
	bodyLength, err := io.Copy(out, body)
	if err != nil {
		return headerLength, bodyLength, fmt.Errorf("copy body: %w", err)
	}
	return headerLength, bodyLength, nil
}

// Like ExtractBody but on the filesystem. The output is written to a
// uniquely named temp file next to outPath and renamed into place only once
// everything succeeded, so a failed run never leaves a half-written file
// that looks complete.
func ExtractBodyFile(sourcePath string, outPath string) (int64, int64, error) {
	source, err := os.Open(sourcePath)
	if err != nil {
		return 0, 0, fmt.Errorf("open source: %w", err)
	}
	defer source.Close()
	var skipped, written int64
	err = writeAtomic(outPath, func(out io.Writer) error {
		var werr error
		skipped, written, werr = ExtractBody(source, out)
		return werr
	})
	return skipped, written, err
}

// Like MergeBody but on the filesystem, with the same atomic rename
// behavior as ExtractBodyFile.
func MergeBodyFile(sourcePath string, bodyPath string, outPath string) (int64, int64, error) {
	source, err := os.Open(sourcePath)
	if err != nil {
		return 0, 0, fmt.Errorf("open source: %w", err)
	}
	defer source.Close()
	body, err := os.Open(bodyPath)
	if err != nil {
		return 0, 0, fmt.Errorf("open body: %w", err)
	}
	defer body.Close()
	var headerLength, bodyLength int64
	err = writeAtomic(outPath, func(out io.Writer) error {
		var werr error
		headerLength, bodyLength, werr = MergeBody(source, body, out)
		return werr
	})
	return headerLength, bodyLength, err
}

// Run write against a temp file in outPath's directory, then rename it into
// place. The temp file is removed on any failure.
func writeAtomic(outPath string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), filepath.Base(outPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

// Produce an md5 string for a file on disk (a simple shortcut)
func Md5File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()
	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
