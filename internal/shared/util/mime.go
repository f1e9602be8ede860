package util

import (
	"path/filepath"
	"strings"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// NormalizeMIME maps a sniffed content type to the document type the
// extractor understands. OOXML documents sniff as zip archives.
func NormalizeMIME(detected, fileName string) string {
	mt := strings.ToLower(strings.TrimSpace(detected))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case mt == MIMEPDF:
		return MIMEPDF
	case mt == MIMEDOCX:
		return MIMEDOCX
	case mt == "application/zip" && ext == ".docx":
		return MIMEDOCX
	case (mt == "" || mt == "application/octet-stream") && ext == ".pdf":
		return MIMEPDF
	}
	return mt
}
