package mtk

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newRandomFilepath(filename string) (string, error) {
	err := os.MkdirAll("ignore", 0770)
	if err != nil {
		return "", err
	}
	filename = time.Now().Format("20060102030405") + "_" + filename
	return filepath.Abs(filepath.Join("ignore", filename))
}

func randomBytes(length int, t *testing.T) []byte {
	raw := make([]byte, length)
	_, err := rand.Read(raw)
	if err != nil {
		t.Fatalf("Error generating random bytes! %s", err)
	}
	return raw
}

func writeTestFile(filename string, data []byte, t *testing.T) string {
	path, err := newRandomFilepath(filename)
	if err != nil {
		t.Fatalf("Error creating test filepath! %s", err)
	}
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("Error writing test file %s! %s", path, err)
	}
	return path
}
