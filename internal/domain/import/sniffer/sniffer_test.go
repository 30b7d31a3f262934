package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"pdf magic", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3"), "application/pdf"},
		{"comma csv", []byte("date,description,amount\n2026-01-01,WALMART,-10.00\n"), "text/csv"},
		{"semicolon csv", []byte("Data Mov;Descrição;Débito\n02-01-2026;CONTINENTE;12,50\n"), "text/csv"},
		{"plain prose", []byte("Dear customer\nyour statement is attached\n"), ""},
		{"empty", nil, ""},
		{"binary", []byte{0x00, 0x01, 0x02, 0xff}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIME(tt.data))
		})
	}
}

func TestDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want rune
	}{
		{"comma", []byte("date,description,amount\n2026-01-01,WALMART,-10.00\n"), ','},
		{"semicolon", []byte("Data Mov;Descrição;Débito;Crédito\n02-01-2026;CONTINENTE;12,50;\n"), ';'},
		{"tab", []byte("date\tdescription\tamount\n2026-01-01\tWALMART\t-10.00\n"), '\t'},
		{"pipe", []byte("date|description|amount\n"), '|'},
		{"bom prefix", []byte("\ufeffdate,description\n"), ','},
		{"no delimiter falls back to comma", []byte("just text\n"), ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delimiter(tt.data))
		})
	}
}
