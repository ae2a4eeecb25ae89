// Copyright 2026 The Provisionr Authors
// SPDX-License-Identifier: Apache-2.0

package provisionr

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// ValueGenerator produces a fresh value for a dynamic field on every call.
type ValueGenerator interface {
	Generate() (string, error)
}

const alphanumericAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// AlphanumericGenerator produces a random string of the given length drawn
// uniformly from [A-Za-z0-9], using a cryptographically strong source since
// generated values commonly back passwords and secrets.
type AlphanumericGenerator struct {
	Length int
}

func NewAlphanumericGenerator(length int) *AlphanumericGenerator {
	return &AlphanumericGenerator{Length: length}
}

func (g *AlphanumericGenerator) Generate() (string, error) {
	if g.Length <= 0 {
		return "", fmt.Errorf("alphanumeric generator: length must be positive, got %d", g.Length)
	}
	out := make([]byte, g.Length)
	for i := range out {
		idx, err := randomIndex(len(alphanumericAlphabet))
		if err != nil {
			return "", fmt.Errorf("alphanumeric generator: %w", err)
		}
		out[i] = alphanumericAlphabet[idx]
	}
	return string(out), nil
}

// PassphraseGenerator joins wordCount words drawn from an embedded wordlist
// with hyphens, e.g. "correct-horse-battery-staple".
type PassphraseGenerator struct {
	WordCount int
	words     []string
}

func NewPassphraseGenerator(wordCount int) *PassphraseGenerator {
	return &PassphraseGenerator{WordCount: wordCount, words: wordlist}
}

func (g *PassphraseGenerator) Generate() (string, error) {
	if g.WordCount <= 0 {
		return "", fmt.Errorf("passphrase generator: word_count must be positive, got %d", g.WordCount)
	}
	words := g.words
	if len(words) == 0 {
		words = wordlist
	}
	picked := make([]string, g.WordCount)
	for i := range picked {
		idx, err := randomIndex(len(words))
		if err != nil {
			return "", fmt.Errorf("passphrase generator: %w", err)
		}
		picked[i] = words[idx]
	}
	return strings.Join(picked, "-"), nil
}

// randomIndex returns a uniformly distributed index in [0, n) using
// rejection sampling to avoid modulo bias.
func randomIndex(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("empty wordlist")
	}
	const space uint64 = 1 << 32
	limit := space - space%uint64(n)
	buf := make([]byte, 4)
	for {
		if _, err := rand.Read(buf); err != nil {
			return 0, err
		}
		v := uint64(buf[0])<<24 | uint64(buf[1])<<16 | uint64(buf[2])<<8 | uint64(buf[3])
		if v < limit {
			return int(v % uint64(n)), nil
		}
	}
}

// NewGenerator builds the ValueGenerator a GeneratorSpec describes.
func NewGenerator(spec GeneratorSpec) (ValueGenerator, error) {
	switch spec.Type {
	case GeneratorAlphanumeric:
		return NewAlphanumericGenerator(spec.Length), nil
	case GeneratorPassphrase:
		return NewPassphraseGenerator(spec.WordCount), nil
	default:
		return nil, fmt.Errorf("unknown generator type %q", spec.Type)
	}
}
