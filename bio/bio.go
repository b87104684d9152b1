// Package bio provides helpers for nucleotide sequences.
package bio

import (
	"strings"
)

var (
	// complement maps a nucleotide (IUPAC, either case) to its
	// complement. Letters missing from the map are kept as is.
	complement = map[byte]byte{
		'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'U': 'A',
		'R': 'Y', 'Y': 'R', 'K': 'M', 'M': 'K',
		'B': 'V', 'V': 'B', 'D': 'H', 'H': 'D',
		'S': 'S', 'W': 'W', 'N': 'N',
		'a': 't', 't': 'a', 'c': 'g', 'g': 'c', 'u': 'a',
		'r': 'y', 'y': 'r', 'k': 'm', 'm': 'k',
		'b': 'v', 'v': 'b', 'd': 'h', 'h': 'd',
		's': 's', 'w': 'w', 'n': 'n',
	}
)

// IsBase tests if the byte is one of the four unambiguous DNA bases
// (capital letters).
func IsBase(b byte) bool {
	switch b {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}

// Unambiguous returns true if the sequence consists only of A, C, G
// and T (capital letters). An empty sequence is unambiguous.
func Unambiguous(seq string) bool {
	return FirstAmbiguous(seq) < 0
}

// FirstAmbiguous returns the position of the first byte which is not
// an unambiguous base, or -1.
func FirstAmbiguous(seq string) int {
	for i := 0; i < len(seq); i++ {
		if !IsBase(seq[i]) {
			return i
		}
	}
	return -1
}

// Complement returns the complement of a single nucleotide.
func Complement(b byte) byte {
	if c, ok := complement[b]; ok {
		return c
	}
	return b
}

// ReverseComplement returns the reverse complement of a nucleotide
// sequence. Case is preserved, unknown letters are copied unchanged.
func ReverseComplement(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	for i := len(seq) - 1; i >= 0; i-- {
		b.WriteByte(Complement(seq[i]))
	}
	return b.String()
}

// Normalize converts the sequence to capital letters and removes
// white space and digits, which is how sequence lines are laid out
// in flat files.
func Normalize(seq string) string {
	var b strings.Builder
	b.Grow(len(seq))
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			continue
		case c >= '0' && c <= '9':
			continue
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
