package vtcore

import (
	"encoding/base64"
	"io"
	"os"
	"strconv"
	"strings"
)

// inlineImageStagingThreshold is the base64-payload size above which a File=
// transfer is streamed to a temp file instead of buffered whole in memory.
const inlineImageStagingThreshold = 1 << 20 // 1 MiB

// FileTransferProvider is offered a file staged from an iTerm2 OSC 1337
// File= transfer that was not requested inline (inline=0).
type FileTransferProvider interface {
	// Offer is called with the transfer's declared name, size, and the path
	// of the temp file its contents were staged to.
	Offer(name string, size int64, path string)
}

// NoopFileTransfer discards file-transfer offers, removing the staged file.
type NoopFileTransfer struct{}

func (NoopFileTransfer) Offer(name string, size int64, path string) {
	os.Remove(path)
}

var _ FileTransferProvider = NoopFileTransfer{}

// iterm2FileArgs holds the parsed key=value arguments of an OSC 1337 File=
// transfer, before its base64 payload is decoded.
type iterm2FileArgs struct {
	name                string
	size                int64
	width               string
	height              string
	preserveAspectRatio bool
	inline              bool
}

func parseITerm2FileArgs(argStr string) iterm2FileArgs {
	args := iterm2FileArgs{preserveAspectRatio: true}
	for _, kv := range strings.Split(argStr, ";") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch k {
		case "name":
			if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
				args.name = string(decoded)
			}
		case "size":
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				args.size = n
			}
		case "width":
			args.width = v
		case "height":
			args.height = v
		case "preserveAspectRatio":
			args.preserveAspectRatio = v != "0"
		case "inline":
			args.inline = v == "1"
		}
	}
	return args
}

// handleITerm2File processes an OSC 1337 File= inline-image/file-transfer
// request: "args:base64payload", where args is a ';'-separated key=value list.
func (t *Terminal) handleITerm2File(value string) {
	argStr, payload, ok := strings.Cut(value, ":")
	if !ok {
		return
	}
	args := parseITerm2FileArgs(argStr)

	if len(payload) > inlineImageStagingThreshold {
		t.handleStagedITerm2File(args, payload)
		return
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return
	}

	if !args.inline {
		t.offerFileTransfer(args, data, "")
		return
	}
	t.displayInlineImage(args, data)
}

// handleStagedITerm2File decodes a large base64 payload by streaming it to a
// temp file rather than holding the whole decoded image in memory at once.
func (t *Terminal) handleStagedITerm2File(args iterm2FileArgs, payload string) {
	f, err := os.CreateTemp("", "vtcore-iterm2-*")
	if err != nil {
		return
	}
	defer f.Close()

	dec := base64.NewDecoder(base64.StdEncoding, strings.NewReader(payload))
	if _, err := io.Copy(f, dec); err != nil {
		os.Remove(f.Name())
		return
	}

	if !args.inline {
		t.offerFileTransfer(args, nil, f.Name())
		return
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		os.Remove(f.Name())
		return
	}
	data, err := io.ReadAll(f)
	os.Remove(f.Name())
	if err != nil {
		return
	}
	t.displayInlineImage(args, data)
}

func (t *Terminal) offerFileTransfer(args iterm2FileArgs, data []byte, stagedPath string) {
	path := stagedPath
	if path == "" {
		f, err := os.CreateTemp("", "vtcore-iterm2-*")
		if err != nil {
			return
		}
		defer f.Close()
		if _, err := f.Write(data); err != nil {
			os.Remove(f.Name())
			return
		}
		path = f.Name()
	}

	size := args.size
	if size == 0 {
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
	}

	t.mu.RLock()
	provider := t.fileTransferProvider
	t.mu.RUnlock()
	if provider == nil {
		provider = NoopFileTransfer{}
	}
	provider.Offer(args.name, size, path)
}

// displayInlineImage decodes an image payload and places it at the cursor,
// following the same ImageManager/placement path as Kitty graphics.
func (t *Terminal) displayInlineImage(args iterm2FileArgs, data []byte) {
	rgba, width, height, err := decodePNG(data)
	if err != nil {
		return
	}

	imageID := t.images.Store(width, height, rgba)

	cellW, cellH := t.getCellSizePixels()
	cols := inlineImageDimension(args.width, width, cellW)
	rows := inlineImageDimension(args.height, height, cellH)
	if cols == 0 {
		cols = int((width + uint32(cellW) - 1) / uint32(cellW))
	}
	if rows == 0 {
		rows = int((height + uint32(cellH) - 1) / uint32(cellH))
	}

	t.mu.Lock()
	curRow := t.cursor.Row
	curCol := t.cursor.Col
	t.mu.Unlock()

	placement := &ImagePlacement{
		ImageID: imageID,
		Row:     curRow,
		Col:     curCol,
		Cols:    cols,
		Rows:    rows,
		SrcW:    width,
		SrcH:    height,
	}
	placementID := t.images.Place(placement)
	t.assignImageToCells(imageID, placementID, placement, width, height, cellW, cellH)
}

// inlineImageDimension resolves an iTerm2 width/height spec ("N", "Npx", "N%",
// "auto") to a cell count. Returns 0 if the spec can't be resolved, leaving
// the caller to fall back to the image's natural size.
func inlineImageDimension(spec string, pixels uint32, cellPixels int) int {
	switch {
	case spec == "" || spec == "auto":
		return 0
	case strings.HasSuffix(spec, "px"):
		if n, err := strconv.Atoi(strings.TrimSuffix(spec, "px")); err == nil && cellPixels > 0 {
			return (n + cellPixels - 1) / cellPixels
		}
	case strings.HasSuffix(spec, "%"):
		// Percentage of the terminal viewport isn't resolvable here without
		// the caller's column/row count; leave to natural size.
		return 0
	default:
		if n, err := strconv.Atoi(spec); err == nil {
			return n
		}
	}
	return 0
}
