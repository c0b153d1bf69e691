package util

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ZipFiles bundles files into a zip archive at output, stored by base
// name in sorted order. The archive is written beside output as a .tmp
// file and renamed into place once complete.
func ZipFiles(files []string, output string) (err error) {
	tmp := output + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("zip: %w", err)
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
		}
	}()

	z := zip.NewWriter(out)

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)
	for _, file := range sorted {
		if err := addFileToZip(z, file); err != nil {
			return fmt.Errorf("zip %s: %w", file, err)
		}
	}

	if err := z.Close(); err != nil {
		return fmt.Errorf("zip: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("zip: %w", err)
	}
	return os.Rename(tmp, output)
}

func addFileToZip(z *zip.Writer, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = filepath.Base(file)
	header.Method = zip.Deflate

	w, err := z.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, f)
	return err
}
