package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestNormalizeStripsBOM(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{"with_bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, []byte("hi")},
		{"without_bom", []byte("hi"), []byte("hi")},
		{"empty", []byte{}, []byte{}},
		{"partial_bom_not_stripped", []byte{0xEF, 0xBB, 'h', 'i'}, []byte{0xEF, 0xBB, 'h', 'i'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeAppliesNFC(t *testing.T) {
	nfd := "café" // e + combining acute accent (U+0301)
	want := "café" // precomposed e-acute (U+00E9)
	got := string(Normalize([]byte(nfd)))
	assert.Equal(t, want, got)
	assert.True(t, norm.NFC.IsNormalString(got), "result is not in NFC form")
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"hello", "café", "café", "﻿hello"}
	for _, input := range inputs {
		first := Normalize([]byte(input))
		second := Normalize(first)
		assert.Equalf(t, first, second, "Normalize not idempotent for %q", input)
	}
}

func TestTokenizationIdenticalAcrossNFCAndNFD(t *testing.T) {
	nfc := NewFromBytes([]byte("café = 1"))
	nfd := NewFromBytes([]byte("café = 1"))

	for {
		tNFC, tNFD := nfc.NextToken(), nfd.NextToken()
		require.Equalf(t, tNFD.Type, tNFC.Type, "token mismatch: %+v vs %+v", tNFC, tNFD)
		require.Equalf(t, tNFD.Literal, tNFC.Literal, "token mismatch: %+v vs %+v", tNFC, tNFD)
		if tNFC.Type == EOF {
			break
		}
	}
}
