package smokefile

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

const (
	// FileHeaderWords is the number of uint32 words in a file header.
	FileHeaderWords = 8
	// FileHeaderSize is the encoded file header length in bytes.
	FileHeaderSize = FileHeaderWords * 4
)

// FileHeader describes a recording. The last three words of the encoded
// header are reserved and written as zero.
type FileHeader struct {
	GridWidth        uint32
	BlockWidth       uint32
	BlockArrayWidth  uint32
	FrameHeaderWords uint32
	TotalFrames      uint32
}

// newFileHeader builds the header for a layout.
func newFileHeader(l Layout, totalFrames int) FileHeader {
	return FileHeader{
		GridWidth:        uint32(l.GridWidth),
		BlockWidth:       uint32(l.BlockWidth),
		BlockArrayWidth:  uint32(l.BlockArrayWidth),
		FrameHeaderWords: uint32(l.HeaderWords()),
		TotalFrames:      uint32(totalFrames),
	}
}

// Encode returns the 32-byte little-endian encoding of h.
func (h FileHeader) Encode() []byte {
	buf := make([]byte, FileHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], h.GridWidth)
	binary.LittleEndian.PutUint32(buf[4:], h.BlockWidth)
	binary.LittleEndian.PutUint32(buf[8:], h.BlockArrayWidth)
	binary.LittleEndian.PutUint32(buf[12:], h.FrameHeaderWords)
	binary.LittleEndian.PutUint32(buf[16:], h.TotalFrames)
	return buf
}

// DecodeFileHeader decodes the first FileHeaderSize bytes of buf.
func DecodeFileHeader(buf []byte) (FileHeader, error) {
	if len(buf) < FileHeaderSize {
		return FileHeader{}, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidHeader, len(buf), FileHeaderSize)
	}
	return FileHeader{
		GridWidth:        binary.LittleEndian.Uint32(buf[0:]),
		BlockWidth:       binary.LittleEndian.Uint32(buf[4:]),
		BlockArrayWidth:  binary.LittleEndian.Uint32(buf[8:]),
		FrameHeaderWords: binary.LittleEndian.Uint32(buf[12:]),
		TotalFrames:      binary.LittleEndian.Uint32(buf[16:]),
	}, nil
}

// Layout returns the block layout described by h after checking that its
// fields agree with each other.
func (h FileHeader) Layout() (Layout, error) {
	l, err := NewLayout(int(h.GridWidth), int(h.BlockWidth))
	if err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if l.BlockArrayWidth != int(h.BlockArrayWidth) {
		return Layout{}, fmt.Errorf("%w: block array width %d, want %d", ErrInvalidHeader, h.BlockArrayWidth, l.BlockArrayWidth)
	}
	if l.HeaderWords() != int(h.FrameHeaderWords) {
		return Layout{}, fmt.Errorf("%w: frame header words %d, want %d", ErrInvalidHeader, h.FrameHeaderWords, l.HeaderWords())
	}
	return l, nil
}

// FrameHeader is a bitmask of changed blocks: bit i of word w flags block
// 64*w + i.
type FrameHeader []uint64

// NewFrameHeader returns a header of the given word count with every listed
// block flagged.
func NewFrameHeader(words int, blocks []int) FrameHeader {
	h := make(FrameHeader, words)
	h.Set(blocks)
	return h
}

// Set clears h and flags the listed blocks.
func (h FrameHeader) Set(blocks []int) {
	for i := range h {
		h[i] = 0
	}
	for _, b := range blocks {
		h[b/64] |= 1 << uint(b%64)
	}
}

// Blocks returns the flagged block indices in ascending order.
func (h FrameHeader) Blocks() []int {
	return h.appendBlocks(nil)
}

func (h FrameHeader) appendBlocks(dst []int) []int {
	for w, word := range h {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			dst = append(dst, 64*w+bit)
			word &= word - 1
		}
	}
	return dst
}

// Count returns the number of flagged blocks.
func (h FrameHeader) Count() int {
	n := 0
	for _, word := range h {
		n += bits.OnesCount64(word)
	}
	return n
}

// encode writes h into buf, which must hold 8*len(h) bytes.
func (h FrameHeader) encode(buf []byte) {
	for i, word := range h {
		binary.LittleEndian.PutUint64(buf[8*i:], word)
	}
}

// decode fills h from buf.
func (h FrameHeader) decode(buf []byte) {
	for i := range h {
		h[i] = binary.LittleEndian.Uint64(buf[8*i:])
	}
}

// allBlocks returns 0..n-1.
func allBlocks(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}
