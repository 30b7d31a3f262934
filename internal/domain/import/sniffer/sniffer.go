// Package sniffer guesses the format of uploaded statement files from
// their content. Browsers routinely send application/octet-stream for CSV
// exports, and bank CSVs disagree on delimiters, so both are detected from
// the bytes rather than trusted from the request.
package sniffer

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

var pdfMagic = []byte("%PDF-")

// candidateDelimiters, most specific first. Comma last so that semicolon
// or tab-delimited files with embedded commas are not misread.
var candidateDelimiters = []rune{';', '\t', '|', ','}

// DetectMIME returns a best-effort MIME type from the file content:
// application/pdf for PDF files, text/csv for delimited text, "" when the
// content is neither.
func DetectMIME(data []byte) string {
	if bytes.HasPrefix(data, pdfMagic) {
		return "application/pdf"
	}
	if looksDelimited(data) {
		return "text/csv"
	}
	return ""
}

// Delimiter guesses the field delimiter of a delimited text file by
// scoring candidates over the first lines. Returns ',' when nothing
// better is found.
func Delimiter(data []byte) rune {
	best := ','
	bestCount := 0

	for i, line := range headLines(data, 10) {
		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}
		for _, d := range candidateDelimiters {
			if count := strings.Count(line, string(d)); count > bestCount {
				bestCount = count
				best = d
			}
		}
	}
	return best
}

// looksDelimited reports whether the content is text with at least one
// consistent delimiter in its first lines.
func looksDelimited(data []byte) bool {
	if len(data) == 0 || !utf8.Valid(data) {
		return false
	}
	if bytes.ContainsRune(data, 0) {
		return false
	}

	delimited := 0
	total := 0
	for i, line := range headLines(data, 10) {
		line = cleanLine(line, i == 0)
		if line == "" {
			continue
		}
		total++
		for _, d := range candidateDelimiters {
			if strings.ContainsRune(line, d) {
				delimited++
				break
			}
		}
	}
	return total > 0 && delimited == total
}

func headLines(data []byte, max int) []string {
	lines := strings.Split(string(data), "\n")
	if len(lines) > max {
		lines = lines[:max]
	}
	return lines
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = strings.TrimPrefix(line, "\uFEFF")
	}
	return strings.TrimSpace(line)
}
