package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EnsureAbsPath returns an absolute, cleaned version of p.
// If the conversion fails, the cleaned input is returned.
func EnsureAbsPath(p string) string {
	if p == "" {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// SamePath reports whether a and b name the same location after cleaning.
func SamePath(a, b string) bool {
	return EnsureAbsPath(a) == EnsureAbsPath(b)
}

// IsSubPath reports whether child lies strictly inside parent.
func IsSubPath(parent, child string) bool {
	rel, err := filepath.Rel(EnsureAbsPath(parent), EnsureAbsPath(child))
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

// FileExists reports whether a regular file exists at path. Errors count as absent.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// MoveFile renames src to dst, falling back to copy+remove across devices.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to move %s: %w", src, err)
	}
	return os.Remove(src)
}

// CopyFile copies a file from src to dst (fallback when rename fails)
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			Debug("Error closing input file: %v", err)
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			Debug("Error closing output file: %v", err)
		}
	}()

	buf := make([]byte, 1024*1024)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		return err
	}
	return out.Sync()
}
