package column

import (
	"math/bits"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// Bitmap is a bit vector over the rows of a boolean mask.
// Bit = 1 means the row is selected.
type Bitmap struct {
	bits   []uint64
	length int
}

// NewBitmap creates a new bitmap with all bits initially clear (0).
func NewBitmap(length int) *Bitmap {
	numWords := (length + 63) / 64
	return &Bitmap{
		bits:   make([]uint64, numWords),
		length: length,
	}
}

// BitmapOf packs a boolean series into a bitmap. Nil and non-bool
// values leave their bit clear.
func BitmapOf(s dataframe.Series) *Bitmap {
	n := Len(s)
	b := NewBitmap(n)
	for i := 0; i < n; i++ {
		if v, ok := BoolValue(s, i); ok && v {
			b.Set(i)
		}
	}
	return b
}

// Len returns the length of the bitmap.
func (b *Bitmap) Len() int {
	return b.length
}

// Set sets the bit at index i to 1.
func (b *Bitmap) Set(i int) {
	if i < 0 || i >= b.length {
		return
	}
	b.bits[i/64] |= uint64(1) << (i % 64)
}

// PopCount returns the number of bits set to 1.
func (b *Bitmap) PopCount() int {
	count := 0
	for _, word := range b.bits {
		count += bits.OnesCount64(word)
	}
	return count
}

// Positions returns the indices of the set bits in ascending order.
func (b *Bitmap) Positions() []int64 {
	out := make([]int64, 0, b.PopCount())
	for w, word := range b.bits {
		for word != 0 {
			tz := bits.TrailingZeros64(word)
			out = append(out, int64(w*64+tz))
			word &= word - 1
		}
	}
	return out
}
