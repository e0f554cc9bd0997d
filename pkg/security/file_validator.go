package security

import (
	"bytes"
	"errors"
	"net/http"
)

// SniffLen is how many leading bytes ValidateResume needs.
const SniffLen = 512

var (
	ErrTypeNotAllowed = errors.New("file type not allowed")
	ErrFileSpoofed    = errors.New("file content does not match its declared type")
	ErrFileTooSmall   = errors.New("file too small to validate")
)

// Résumé content types and the extension each one is stored under
var resumeTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// Magic byte signatures per extension
var magicBytes = map[string][][]byte{
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                         // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                         // ZIP (PK..)
}

// Sniffed MIME types accepted per extension. DOC and DOCX are not recognised by
// http.DetectContentType so they come back as octet-stream or zip.
var sniffedMIMETypes = map[string]map[string]bool{
	".pdf":  {"application/pdf": true},
	".doc":  {"application/octet-stream": true},
	".docx": {"application/zip": true, "application/octet-stream": true},
}

// ResumeExtension returns the extension a résumé of contentType is stored under.
func ResumeExtension(contentType string) (string, bool) {
	ext, ok := resumeTypes[contentType]
	return ext, ok
}

// ValidateResume checks the leading bytes of an upload against its declared type:
// 1. Content type whitelist
// 2. Magic byte verification
// 3. Sniffed MIME type must agree with the extension
func ValidateResume(contentType string, head []byte) (ext string, err error) {
	ext, ok := resumeTypes[contentType]
	if !ok {
		return "", ErrTypeNotAllowed
	}
	if len(head) < 4 {
		return "", ErrFileTooSmall
	}
	if !hasMagicBytes(ext, head) {
		return "", ErrFileSpoofed
	}
	if detected := http.DetectContentType(head); !sniffedMIMETypes[ext][detected] {
		return "", ErrFileSpoofed
	}
	return ext, nil
}

func hasMagicBytes(ext string, data []byte) bool {
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}
