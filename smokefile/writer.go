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

// placeholderFrames is the frame count written by WriteInit. An unfinished
// recording therefore declares no frames; StopWrite patches the real count.
const placeholderFrames = 0

// Writer records successive density grids as delta-compressed frames.
// A Writer owns its file exclusively and is not safe for concurrent use.
type Writer struct {
	loc  Locator
	path string
	file *os.File
	buf  *bufio.Writer

	layout Layout
	header FrameHeader

	// blocks[front] caches the last written frame; the other set is scratch
	blocks [2][][]float32
	front  int

	headerBytes []byte
	scratch     []byte
	changed     []int

	frames       int
	bytesWritten int64
}

// NewWriter returns a writer that creates files through loc.
func NewWriter(loc Locator) *Writer {
	return &Writer{loc: loc}
}

// WriteInit validates the block layout, creates the file and writes the
// header and a full snapshot of start as frame 0.
func (w *Writer) WriteInit(name string, gridWidth int, start []float32, blockWidth int) error {
	if w.file != nil {
		return fmt.Errorf("smokefile: writer already open on %s", w.path)
	}
	layout, err := NewLayout(gridWidth, blockWidth)
	if err != nil {
		return err
	}
	if len(start) != layout.GridSize() {
		return fmt.Errorf("%w: %d cells, want %d", ErrGridSize, len(start), layout.GridSize())
	}

	f, path, err := w.loc.Create(name)
	if err != nil {
		return err
	}

	w.path = path
	w.file = f
	w.buf = bufio.NewWriterSize(f, 1<<16)
	w.layout = layout
	w.header = make(FrameHeader, layout.HeaderWords())
	w.blocks = [2][][]float32{layout.NewBlocks(), layout.NewBlocks()}
	w.front = 0
	w.headerBytes = make([]byte, 8*layout.HeaderWords())
	w.scratch = make([]byte, 4*layout.BlockSize())
	w.frames = 0
	w.bytesWritten = 0

	if err := w.write(newFileHeader(layout, placeholderFrames).Encode()); err != nil {
		return w.fail(err)
	}

	layout.splitInto(start, w.blocks[w.front])
	w.changed = allBlocks(layout.BlockCount())
	if err := w.writeFrame(w.blocks[w.front], w.changed); err != nil {
		return w.fail(err)
	}
	w.frames = 1

	slog.Info("recording opened",
		"path", path,
		"grid_width", layout.GridWidth,
		"block_width", layout.BlockWidth,
		"block_array_width", layout.BlockArrayWidth,
		"frame_header_words", layout.HeaderWords(),
	)
	return nil
}

// AddFrame appends grid as a frame holding only the blocks that changed
// since the previous frame.
func (w *Writer) AddFrame(grid []float32) error {
	if w.file == nil {
		return ErrNotInitialised
	}
	if len(grid) != w.layout.GridSize() {
		return fmt.Errorf("%w: %d cells, want %d", ErrGridSize, len(grid), w.layout.GridSize())
	}

	next := w.blocks[1-w.front]
	w.layout.splitInto(grid, next)
	w.changed = GetDifferenceBlocks(w.blocks[w.front], next)

	if err := w.writeFrame(next, w.changed); err != nil {
		return w.fail(err)
	}

	w.front = 1 - w.front
	w.frames++

	slog.Debug("frame diff", "frame", w.frames-1, "changed_blocks", len(w.changed))
	return nil
}

// writeFrame emits a frame header flagging ids followed by those blocks.
func (w *Writer) writeFrame(blocks [][]float32, ids []int) error {
	w.header.Set(ids)
	w.header.encode(w.headerBytes)
	if err := w.write(w.headerBytes); err != nil {
		return err
	}
	for _, id := range ids {
		for i, v := range blocks[id] {
			binary.LittleEndian.PutUint32(w.scratch[4*i:], math.Float32bits(v))
		}
		if err := w.write(w.scratch); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.buf.Write(p)
	w.bytesWritten += int64(n)
	if err != nil {
		return &IOError{Op: "write", Path: w.path, Err: err}
	}
	return nil
}

// StopWrite flushes the stream, then reopens the file and rewrites the
// header with the final frame count.
func (w *Writer) StopWrite() error {
	if w.file == nil {
		return ErrNotInitialised
	}

	var firstErr error
	if err := w.buf.Flush(); err != nil {
		firstErr = &IOError{Op: "write", Path: w.path, Err: err}
	}
	if err := w.file.Close(); err != nil && firstErr == nil {
		firstErr = &IOError{Op: "close", Path: w.path, Err: err}
	}
	w.file = nil
	w.buf = nil
	if firstErr != nil {
		return firstErr
	}

	if err := patchHeader(w.path, newFileHeader(w.layout, w.frames)); err != nil {
		return err
	}

	slog.Info("recording closed", "path", w.path, "frames", w.frames, "bytes", w.bytesWritten)
	return nil
}

// patchHeader overwrites the file header in place.
func patchHeader(path string, h FileHeader) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "close", Path: path, Err: cerr}
		}
	}()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if _, err := f.Write(h.Encode()); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// fail closes the file after a write error so the session cannot continue.
func (w *Writer) fail(err error) error {
	if w.file != nil {
		if cerr := w.file.Close(); cerr != nil {
			err = errors.Join(err, &IOError{Op: "close", Path: w.path, Err: cerr})
		}
	}
	w.file = nil
	w.buf = nil
	return err
}

// FrameCount returns the number of frames written, including frame 0.
func (w *Writer) FrameCount() int { return w.frames }

// LastChanged returns the block indices written in the most recent frame.
func (w *Writer) LastChanged() []int { return w.changed }

// BytesWritten returns the number of bytes handed to the stream so far.
func (w *Writer) BytesWritten() int64 { return w.bytesWritten }

// Layout returns the block layout of the open recording.
func (w *Writer) Layout() Layout { return w.layout }

// Path returns the file path chosen by WriteInit.
func (w *Writer) Path() string { return w.path }
