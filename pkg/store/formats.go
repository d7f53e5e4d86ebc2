// Package store saves and loads string set models, compressing them
// according to the file name.
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Format represents the different model file formats
type Format int

const (
	FormatUnknown Format = iota
	FormatRaw            // Plain encoded tree
	FormatZstd           // zstd compressed tree
	FormatLZ4            // lz4 frame compressed tree
)

// FormatInfo contains metadata about a model file format
type FormatInfo struct {
	Format      Format
	Description string
	Extensions  []string
	Magic       []byte
}

var supportedFormats = map[Format]FormatInfo{
	FormatRaw: {
		Format:      FormatRaw,
		Description: "Plain Model",
		Extensions:  []string{".lss", ".txt"},
	},
	FormatZstd: {
		Format:      FormatZstd,
		Description: "Zstandard Compressed Model",
		Extensions:  []string{".zst", ".zstd"},
		Magic:       []byte{0x28, 0xb5, 0x2f, 0xfd},
	},
	FormatLZ4: {
		Format:      FormatLZ4,
		Description: "LZ4 Compressed Model",
		Extensions:  []string{".lz4"},
		Magic:       []byte{0x04, 0x22, 0x4d, 0x18},
	},
}

func (f Format) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// DetectFormat picks the format of a model file from its extension.
// "model.lss.zst" is zstd, "model.lss.lz4" is lz4 and "model.lss" is raw.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, info := range supportedFormats {
		for _, e := range info.Extensions {
			if ext == e {
				return info.Format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// sniffFormat detects the format of an existing file from its first bytes.
// Anything without a known magic number is treated as raw.
func sniffFormat(filename string) (Format, error) {
	file, err := os.Open(filename)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	head := make([]byte, 4)
	n, _ := file.Read(head)
	head = head[:n]
	for _, info := range supportedFormats {
		if len(info.Magic) > 0 && bytes.Equal(head, info.Magic) {
			log.Debugf("File %s looks like %s", filename, info.Description)
			return info.Format, nil
		}
	}
	return FormatRaw, nil
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}
