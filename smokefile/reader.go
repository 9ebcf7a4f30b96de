package smokefile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
)

// Reader decodes a recording frame by frame into one live grid that is
// patched in place. A Reader is not safe for concurrent use.
type Reader struct {
	loc  Locator
	path string
	file *os.File
	buf  *bufio.Reader

	header FileHeader
	layout Layout
	grid   []float32

	frameHeader FrameHeader
	headerBytes []byte
	blockBytes  []byte
	block       []float32
	changed     []int

	framesRead int
}

// NewReader returns a reader that opens files through loc.
func NewReader(loc Locator) *Reader {
	return &Reader{loc: loc}
}

// ReadInit opens a recording, decodes its header and allocates a zeroed
// working grid plus per-frame scratch buffers.
func (r *Reader) ReadInit(name string) error {
	if r.file != nil {
		return fmt.Errorf("smokefile: reader already open on %s", r.path)
	}

	f, path, err := r.loc.Open(name)
	if err != nil {
		return err
	}
	br := bufio.NewReaderSize(f, 1<<16)

	raw := make([]byte, FileHeaderSize)
	if _, err := io.ReadFull(br, raw); err != nil {
		f.Close()
		return &IOError{Op: "read", Path: path, Err: err}
	}
	header, err := DecodeFileHeader(raw)
	if err != nil {
		f.Close()
		return err
	}
	layout, err := header.Layout()
	if err != nil {
		f.Close()
		return err
	}

	r.path = path
	r.file = f
	r.buf = br
	r.header = header
	r.layout = layout
	r.grid = make([]float32, layout.GridSize())
	r.frameHeader = make(FrameHeader, layout.HeaderWords())
	r.headerBytes = make([]byte, 8*layout.HeaderWords())
	r.blockBytes = make([]byte, 4*layout.BlockSize())
	r.block = make([]float32, layout.BlockSize())
	r.changed = r.changed[:0]
	r.framesRead = 0

	slog.Debug("recording opened for read",
		"path", path,
		"grid_width", header.GridWidth,
		"block_width", header.BlockWidth,
		"total_frames", header.TotalFrames,
	)
	return nil
}

// ReadNextFrame decodes the next frame and returns the working grid. Blocks
// not flagged in the frame keep their previous values. The returned slice is
// owned by the reader. After the last frame it returns io.EOF.
func (r *Reader) ReadNextFrame() ([]float32, error) {
	if r.file == nil {
		return nil, ErrNotInitialised
	}
	if r.framesRead >= int(r.header.TotalFrames) {
		return r.grid, io.EOF
	}

	if err := r.readFull(r.headerBytes); err != nil {
		return nil, err
	}
	r.frameHeader.decode(r.headerBytes)
	r.changed = r.frameHeader.appendBlocks(r.changed[:0])

	count := r.layout.BlockCount()
	for _, id := range r.changed {
		if id >= count {
			err := fmt.Errorf("%w: block %d of %d in frame %d", ErrInvalidFrame, id, count, r.framesRead)
			r.close()
			return nil, err
		}
		if err := r.readFull(r.blockBytes); err != nil {
			return nil, err
		}
		for i := range r.block {
			r.block[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.blockBytes[4*i:]))
		}
		r.layout.scatter(r.grid, id, r.block)
	}

	r.framesRead++
	return r.grid, nil
}

// readFull fills p from the stream; a short read ends the session.
func (r *Reader) readFull(p []byte) error {
	if _, err := io.ReadFull(r.buf, p); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.close()
		return &IOError{Op: "read", Path: r.path, Err: err}
	}
	return nil
}

// StopRead closes the file and releases the scratch buffers.
func (r *Reader) StopRead() error {
	if r.file == nil {
		return ErrNotInitialised
	}
	if err := r.close(); err != nil {
		return &IOError{Op: "close", Path: r.path, Err: err}
	}
	return nil
}

func (r *Reader) close() error {
	err := r.file.Close()
	r.file = nil
	r.buf = nil
	r.frameHeader = nil
	r.headerBytes = nil
	r.blockBytes = nil
	r.block = nil
	return err
}

// Header returns the decoded file header.
func (r *Reader) Header() FileHeader { return r.header }

// Layout returns the block layout of the open recording.
func (r *Reader) Layout() Layout { return r.layout }

// Grid returns the working grid as of the last frame read.
func (r *Reader) Grid() []float32 { return r.grid }

// FramesRead returns the number of frames decoded since ReadInit.
func (r *Reader) FramesRead() int { return r.framesRead }

// LastChanged returns the block indices patched by the last frame.
func (r *Reader) LastChanged() []int { return r.changed }

// Path returns the resolved file path.
func (r *Reader) Path() string { return r.path }
