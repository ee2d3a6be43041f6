package fingerprint

import (
	"fmt"

	"github.com/kailas-cloud/smartsample/internal/domain"
)

// Supported hash sizes (thumbnail edge length for the dHash/aHash grids).
const (
	DefaultHashSize = 8
	LargeHashSize   = 16
)

// Dominant color codes stored in the two-bit dominant field.
const (
	ColorNeutral uint64 = iota
	ColorRed
	ColorGreen
	ColorBlue
)

// Widths of the scalar sub-features.
const (
	ColorfulBits = 1
	BrightBits   = 1
	DominantBits = 2
)

// BucketCount is the size of the bucket key space produced by Layout.BucketKey:
// colorful(2) x bright(2) x dominant(4) x edge polarity(2) x luminance mass(2).
const BucketCount = 2 * 2 * 4 * 2 * 2

// Layout describes where each sub-feature lives inside a fingerprint.
//
// Bit order is fixed so fingerprints from different runs stay comparable:
//
//	[dhash: S*S][ahash: S*S][colorful: 1][bright: 1][dominant: 2]
type Layout struct {
	hashSize int
}

// NewLayout returns the layout for the given hash size (8 or 16).
func NewLayout(hashSize int) (Layout, error) {
	if hashSize != DefaultHashSize && hashSize != LargeHashSize {
		return Layout{}, fmt.Errorf("hash size must be %d or %d, got %d", DefaultHashSize, LargeHashSize, hashSize)
	}
	return Layout{hashSize: hashSize}, nil
}

// DefaultLayout returns the 132-bit layout.
func DefaultLayout() Layout { return Layout{hashSize: DefaultHashSize} }

// HashSize returns the grid edge length S.
func (l Layout) HashSize() int { return l.hashSize }

// HashBits returns the width of each of the dHash and aHash fields.
func (l Layout) HashBits() int { return l.hashSize * l.hashSize }

// DHashOffset returns the bit offset of the difference hash.
func (l Layout) DHashOffset() int { return 0 }

// AHashOffset returns the bit offset of the average hash.
func (l Layout) AHashOffset() int { return l.HashBits() }

// ColorfulOffset returns the bit offset of the color-variance bit.
func (l Layout) ColorfulOffset() int { return 2 * l.HashBits() }

// BrightOffset returns the bit offset of the overall-brightness bit.
func (l Layout) BrightOffset() int { return l.ColorfulOffset() + ColorfulBits }

// DominantOffset returns the bit offset of the dominant-color field.
func (l Layout) DominantOffset() int { return l.BrightOffset() + BrightBits }

// Width returns the total fingerprint width in bits.
func (l Layout) Width() int { return l.DominantOffset() + DominantBits }

// Tag identifies the layout in cache keys.
func (l Layout) Tag() string { return fmt.Sprintf("v1-s%d", l.hashSize) }

// Features are the decomposed sub-features of one fingerprint.
type Features struct {
	DHash    []uint64
	AHash    []uint64
	Colorful bool
	Bright   bool
	Dominant uint64
}

// Compose packs features into a fingerprint in layout order.
func (l Layout) Compose(f Features) (Fingerprint, error) {
	var b Builder
	b.AppendWords(f.DHash, l.HashBits())
	b.AppendWords(f.AHash, l.HashBits())
	b.Append(boolBit(f.Colorful), ColorfulBits)
	b.Append(boolBit(f.Bright), BrightBits)
	b.Append(f.Dominant, DominantBits)
	return b.Build()
}

// Colorful reads the color-variance bit.
func (l Layout) Colorful(fp Fingerprint) bool { return fp.Bit(l.ColorfulOffset()) }

// Bright reads the overall-brightness bit.
func (l Layout) Bright(fp Fingerprint) bool { return fp.Bit(l.BrightOffset()) }

// Dominant reads the dominant-color code.
func (l Layout) Dominant(fp Fingerprint) uint64 { return fp.Field(l.DominantOffset(), DominantBits) }

// BucketKey discretizes the fingerprint into one of BucketCount buckets.
// The hash fields contribute one bit each: whether more than half of their
// bits are set.
func (l Layout) BucketKey(fp Fingerprint) (int, error) {
	if fp.Width() != l.Width() {
		return 0, fmt.Errorf("bucket key: %w", domain.NewDimensionMismatch(fp.Width(), l.Width()))
	}
	half := l.HashBits() / 2
	key := 0
	key = key*2 + int(boolBit(l.Colorful(fp)))
	key = key*2 + int(boolBit(l.Bright(fp)))
	key = key*4 + int(l.Dominant(fp))
	key = key*2 + int(boolBit(fp.OnesCount(l.DHashOffset(), l.HashBits()) > half))
	key = key*2 + int(boolBit(fp.OnesCount(l.AHashOffset(), l.HashBits()) > half))
	return key, nil
}

// BucketLabel renders a bucket key as readable feature names.
func BucketLabel(key int) string {
	mass := key % 2
	key /= 2
	edge := key % 2
	key /= 2
	dom := key % 4
	key /= 4
	bright := key % 2
	key /= 2
	colorful := key % 2
	names := [...]string{"neutral", "red", "green", "blue"}
	return fmt.Sprintf("colorful=%d bright=%d dominant=%s edge=%d mass=%d",
		colorful, bright, names[dom], edge, mass)
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
