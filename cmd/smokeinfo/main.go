// Command smokeinfo prints the header of a smoke recording and how many
// blocks each frame stores.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/smoke/config"
	"github.com/pthm-cable/smoke/smokefile"
)

// frameInfo is one row of the per-frame report.
type frameInfo struct {
	Frame         int     `csv:"frame"`
	ChangedBlocks int     `csv:"changed_blocks"`
	PayloadBytes  int64   `csv:"payload_bytes"`
	TotalDensity  float64 `csv:"total_density"`
}

// scan reads every frame of an open recording.
func scan(r *smokefile.Reader) ([]frameInfo, error) {
	l := r.Layout()
	headerBytes := int64(8 * l.HeaderWords())
	blockBytes := int64(4 * l.BlockSize())

	frames := make([]frameInfo, 0, r.Header().TotalFrames)
	for {
		grid, err := r.ReadNextFrame()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}

		var total float64
		for _, v := range grid {
			total += float64(v)
		}
		changed := len(r.LastChanged())
		fi := frameInfo{
			Frame:         r.FramesRead() - 1,
			ChangedBlocks: changed,
			PayloadBytes:  headerBytes + int64(changed)*blockBytes,
			TotalDensity:  total,
		}
		slog.Debug("frame", "frame", fi.Frame, "changed_blocks", fi.ChangedBlocks, "payload_bytes", fi.PayloadBytes)
		frames = append(frames, fi)
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	name := flag.String("name", "smoke", "Recording name or path")
	csvPath := flag.String("csv", "", "Write per-frame rows to this CSV file")
	verbose := flag.Bool("v", false, "Log every frame")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	r := smokefile.NewReader(smokefile.Locator{Dirs: cfg.Derived.SearchPaths, Ext: cfg.Recording.Extension})
	if err := r.ReadInit(*name); err != nil {
		slog.Error("failed to open recording", "name", *name, "error", err)
		os.Exit(1)
	}
	defer r.StopRead()

	h := r.Header()
	fmt.Printf("path:               %s\n", r.Path())
	fmt.Printf("grid width:         %d\n", h.GridWidth)
	fmt.Printf("block width:        %d\n", h.BlockWidth)
	fmt.Printf("block array width:  %d\n", h.BlockArrayWidth)
	fmt.Printf("frame header words: %d\n", h.FrameHeaderWords)
	fmt.Printf("total frames:       %d\n", h.TotalFrames)

	frames, err := scan(r)
	if err != nil {
		slog.Error("failed to read recording", "frames_read", len(frames), "error", err)
	}

	var payload int64
	var changed int
	for _, f := range frames {
		payload += f.PayloadBytes
		changed += f.ChangedBlocks
	}
	fmt.Printf("frames read:        %d\n", len(frames))
	fmt.Printf("changed blocks:     %d\n", changed)
	fmt.Printf("payload bytes:      %d\n", payload)
	if n := len(frames); n > 0 {
		fmt.Printf("mean blocks/frame:  %.2f of %d\n", float64(changed)/float64(n), r.Layout().BlockCount())
	}

	if *csvPath != "" {
		if werr := writeCSV(*csvPath, frames); werr != nil {
			slog.Error("failed to write csv", "path", *csvPath, "error", werr)
			os.Exit(1)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func writeCSV(path string, frames []frameInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(&frames, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
