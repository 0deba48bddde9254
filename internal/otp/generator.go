// Package otp generates numeric one-time codes and verifies them against their stored hashes.
package otp

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"
	"strconv"
)

// DefaultLength is the number of digits in a one-time code.
const DefaultLength = 6

// maxCodeLen bounds the supplied code before it reaches bcrypt, which rejects inputs over 72 bytes.
const maxCodeLen = 64

// Generator draws fixed-width numeric codes uniformly from [10^(n-1), 10^n - 1]
// (100000–999999 for six digits) and hashes them with a Hasher.
type Generator struct {
	length int
	hasher *Hasher
	random io.Reader
}

// NewGenerator returns a Generator for codes of length digits (4–10; out-of-range uses DefaultLength).
func NewGenerator(length int, hasher *Hasher) *Generator {
	if length < 4 || length > 10 {
		length = DefaultLength
	}
	if hasher == nil {
		hasher = NewHasher(0)
	}
	return &Generator{length: length, hasher: hasher, random: rand.Reader}
}

// Length returns the number of digits in generated codes.
func (g *Generator) Length() int {
	return g.length
}

// Generate returns a fresh plaintext code and its bcrypt hash.
func (g *Generator) Generate() (plaintext string, hash string, err error) {
	plaintext, err = g.newCode()
	if err != nil {
		return "", "", err
	}
	hash, err = g.hasher.Hash([]byte(plaintext))
	if err != nil {
		return "", "", err
	}
	return plaintext, hash, nil
}

// Verify reports whether code matches the stored hash. The code is compared as opaque text.
func (g *Generator) Verify(hash, code string) bool {
	if hash == "" || code == "" || len(code) > maxCodeLen {
		return false
	}
	return g.hasher.Compare(hash, []byte(code)) == nil
}

func (g *Generator) newCode() (string, error) {
	low := int64(1)
	for i := 1; i < g.length; i++ {
		low *= 10
	}
	span := big.NewInt(9 * low)
	n, err := rand.Int(g.random, span)
	if err != nil {
		return "", err
	}
	code := strconv.FormatInt(low+n.Int64(), 10)
	if len(code) != g.length {
		return "", errors.New("otp: generated code has wrong width")
	}
	return code, nil
}
