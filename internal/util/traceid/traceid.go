package traceid

import (
	"crypto/rand"
	"strings"
	"time"
)

const crockfordBase32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// New generates a fresh trace ID: a UUIDv7 (time-ordered, random tail)
// rendered in lowercase Crockford Base32 so IDs sort by creation time and
// survive human transcription.
func New() (string, error) {
	var id [16]byte

	// 48-bit big-endian Unix millisecond timestamp
	now := time.Now().UnixMilli()
	id[0] = byte(now >> 40)
	id[1] = byte(now >> 32)
	id[2] = byte(now >> 24)
	id[3] = byte(now >> 16)
	id[4] = byte(now >> 8)
	id[5] = byte(now)

	if _, err := rand.Read(id[6:]); err != nil {
		return "", err
	}

	id[6] = (id[6] & 0x0F) | 0x70 // version 7
	id[8] = (id[8] & 0x3F) | 0x80 // RFC 4122 variant

	return encode(id[:]), nil
}

// Normalize maps a received trace ID onto the canonical lowercase Crockford
// form, fixing the usual transcription confusions (O/0, I/L/1).
func Normalize(input string) string {
	var result strings.Builder

	input = strings.ReplaceAll(input, " ", "")
	input = strings.ToUpper(input)

	for _, char := range input {
		switch char {
		case 'O':
			result.WriteRune('0')
		case 'I', 'L':
			result.WriteRune('1')
		default:
			result.WriteRune(char)
		}
	}

	return strings.ToLower(result.String())
}

func encode(input []byte) string {
	var (
		result strings.Builder
		bits   = 0
		accum  = 0
	)

	for _, b := range input {
		accum = accum<<8 | int(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			result.WriteByte(crockfordBase32Alphabet[(accum>>bits)&0x1F])
		}
	}

	if bits > 0 {
		result.WriteByte(crockfordBase32Alphabet[(accum<<uint(5-bits))&0x1F])
	}

	return strings.ToLower(result.String())
}
