// Package fingerprint holds the fixed-width perceptual bit-vector that stands
// in for an image during selection, and the Hamming metric over it.
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/steakknife/hamming"

	"github.com/kailas-cloud/smartsample/internal/domain"
)

const wordBits = 64

// Fingerprint is an immutable bit-vector of a fixed width.
// Bits past Width in the last word are always zero.
type Fingerprint struct {
	words []uint64
	width int
}

// FromWords creates a fingerprint from little-endian 64-bit words.
// Bits beyond width are masked off.
func FromWords(words []uint64, width int) (Fingerprint, error) {
	if width <= 0 {
		return Fingerprint{}, fmt.Errorf("fingerprint width must be positive, got %d", width)
	}
	need := wordsFor(width)
	if len(words) != need {
		return Fingerprint{}, fmt.Errorf("fingerprint of %d bits needs %d words, got %d", width, need, len(words))
	}
	w := make([]uint64, need)
	copy(w, words)
	w[need-1] &= tailMask(width)
	return Fingerprint{words: w, width: width}, nil
}

// Width returns the number of bits.
func (f Fingerprint) Width() int { return f.width }

// IsZero reports whether the fingerprint was never initialized.
func (f Fingerprint) IsZero() bool { return f.width == 0 }

// Words returns a copy of the underlying words.
func (f Fingerprint) Words() []uint64 {
	out := make([]uint64, len(f.words))
	copy(out, f.words)
	return out
}

// Bit reports whether bit i is set.
func (f Fingerprint) Bit(i int) bool {
	if i < 0 || i >= f.width {
		return false
	}
	return f.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// Field extracts up to 64 bits starting at offset, least significant bit first.
func (f Fingerprint) Field(offset, width int) uint64 {
	var v uint64
	for i := 0; i < width && i < wordBits; i++ {
		if f.Bit(offset + i) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// OnesCount returns the number of set bits in [offset, offset+width).
func (f Fingerprint) OnesCount(offset, width int) int {
	n := 0
	for i := offset; i < offset+width && i < f.width; i++ {
		if f.Bit(i) {
			n++
		}
	}
	return n
}

// Bytes encodes the fingerprint as little-endian words.
func (f Fingerprint) Bytes() []byte {
	buf := make([]byte, len(f.words)*8)
	for i, w := range f.words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

// FromBytes decodes the output of Bytes for the given width.
func FromBytes(data []byte, width int) (Fingerprint, error) {
	if len(data)%8 != 0 {
		return Fingerprint{}, fmt.Errorf("invalid fingerprint data: len=%d (not multiple of 8)", len(data))
	}
	words := make([]uint64, len(data)/8)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	return FromWords(words, width)
}

// String renders the fingerprint as hex, most significant word first.
func (f Fingerprint) String() string {
	buf := make([]byte, len(f.words)*8)
	for i := range f.words {
		binary.BigEndian.PutUint64(buf[i*8:], f.words[len(f.words)-1-i])
	}
	return hex.EncodeToString(buf)
}

// ParseHex decodes the output of String for the given width.
func ParseHex(s string, width int) (Fingerprint, error) {
	if width <= 0 {
		return Fingerprint{}, fmt.Errorf("fingerprint width must be positive, got %d", width)
	}
	buf, err := hex.DecodeString(s)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("invalid fingerprint hex: %w", err)
	}
	need := wordsFor(width)
	if len(buf) != need*8 {
		return Fingerprint{}, fmt.Errorf("fingerprint of %d bits needs %d hex digits, got %d", width, need*16, len(s))
	}
	words := make([]uint64, need)
	for i := range words {
		words[need-1-i] = binary.BigEndian.Uint64(buf[i*8:])
	}
	if words[need-1]&^tailMask(width) != 0 {
		return Fingerprint{}, fmt.Errorf("fingerprint has bits set beyond width %d", width)
	}
	return FromWords(words, width)
}

// Equal reports bit-identical fingerprints of equal width.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.width != other.width {
		return false
	}
	for i := range f.words {
		if f.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// Distance returns the Hamming distance between a and b.
// Fingerprints of different widths yield a DimensionMismatchError.
func Distance(a, b Fingerprint) (int, error) {
	if a.width != b.width {
		return 0, domain.NewDimensionMismatch(a.width, b.width)
	}
	d := 0
	for i := range a.words {
		d += hamming.Uint64(a.words[i], b.words[i])
	}
	return d, nil
}

func wordsFor(width int) int {
	return (width + wordBits - 1) / wordBits
}

func tailMask(width int) uint64 {
	r := width % wordBits
	if r == 0 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(r)) - 1
}

// Builder appends fixed-width fields in order, least significant bit first.
type Builder struct {
	words []uint64
	width int
}

// Append adds the low `width` bits of v (width ≤ 64).
func (b *Builder) Append(v uint64, width int) *Builder {
	for i := 0; i < width; i++ {
		if b.width%wordBits == 0 {
			b.words = append(b.words, 0)
		}
		if v&(1<<uint(i)) != 0 {
			b.words[b.width/wordBits] |= 1 << uint(b.width%wordBits)
		}
		b.width++
	}
	return b
}

// AppendWords adds whole 64-bit words, keeping only the first `width` bits overall.
func (b *Builder) AppendWords(ws []uint64, width int) *Builder {
	for i := 0; i < width; i += wordBits {
		n := width - i
		if n > wordBits {
			n = wordBits
		}
		var w uint64
		if i/wordBits < len(ws) {
			w = ws[i/wordBits]
		}
		b.Append(w, n)
	}
	return b
}

// Width returns the number of bits appended so far.
func (b *Builder) Width() int { return b.width }

// Build returns the accumulated fingerprint.
func (b *Builder) Build() (Fingerprint, error) {
	return FromWords(b.words, b.width)
}
