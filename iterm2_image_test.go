package vtcore

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"os"
	"strings"
	"testing"
)

// testPNG returns an encoded width x height PNG.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test png: %v", err)
	}
	return buf.Bytes()
}

type recordingFileTransfer struct {
	called bool
	name   string
	size   int64
	path   string
}

func (r *recordingFileTransfer) Offer(name string, size int64, path string) {
	r.called = true
	r.name = name
	r.size = size
	r.path = path
}

func TestParseITerm2FileArgs(t *testing.T) {
	name := base64.StdEncoding.EncodeToString([]byte("photo.png"))
	args := parseITerm2FileArgs("name=" + name + ";size=1234;width=40;height=10px;preserveAspectRatio=0;inline=1")

	if args.name != "photo.png" {
		t.Errorf("expected decoded name, got %q", args.name)
	}
	if args.size != 1234 {
		t.Errorf("expected size 1234, got %d", args.size)
	}
	if args.width != "40" || args.height != "10px" {
		t.Errorf("unexpected dimensions %q x %q", args.width, args.height)
	}
	if args.preserveAspectRatio {
		t.Error("expected preserveAspectRatio=0 to parse false")
	}
	if !args.inline {
		t.Error("expected inline=1 to parse true")
	}
}

func TestParseITerm2FileArgs_Defaults(t *testing.T) {
	args := parseITerm2FileArgs("")
	if !args.preserveAspectRatio {
		t.Error("expected preserveAspectRatio to default true")
	}
	if args.inline {
		t.Error("expected inline to default false")
	}
	if args.name != "" || args.size != 0 {
		t.Errorf("unexpected defaults %+v", args)
	}
}

func TestITerm2File_InlineImagePlacedAtCursor(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b[5;10H")

	payload := base64.StdEncoding.EncodeToString(testPNG(t, 20, 40))
	term.WriteString("\x1b]1337;File=inline=1:" + payload + "\x07")

	if term.ImageCount() != 1 {
		t.Fatalf("expected 1 stored image, got %d", term.ImageCount())
	}
	placements := term.ImagePlacements()
	if len(placements) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(placements))
	}
	p := placements[0]
	if p.Row != 4 || p.Col != 9 {
		t.Errorf("expected placement at the cursor (4,9), got (%d,%d)", p.Row, p.Col)
	}
	// 20x40 pixels at the default 10x20 cell size covers 2x2 cells.
	if p.Cols != 2 || p.Rows != 2 {
		t.Errorf("expected 2x2 cell coverage, got %dx%d", p.Cols, p.Rows)
	}
}

func TestITerm2File_ExplicitCellDimensions(t *testing.T) {
	term := New(WithSize(24, 80))
	payload := base64.StdEncoding.EncodeToString(testPNG(t, 20, 40))
	term.WriteString("\x1b]1337;File=inline=1;width=5;height=3:" + payload + "\x07")

	placements := term.ImagePlacements()
	if len(placements) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(placements))
	}
	if placements[0].Cols != 5 || placements[0].Rows != 3 {
		t.Errorf("expected 5x3 cells, got %dx%d", placements[0].Cols, placements[0].Rows)
	}
}

func TestITerm2File_MalformedPayloadDropped(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b]1337;File=inline=1:!!!notbase64!!!\x07")
	if term.ImageCount() != 0 {
		t.Errorf("expected malformed payload dropped, got %d images", term.ImageCount())
	}

	// Valid base64 that is not a PNG is also dropped.
	junk := base64.StdEncoding.EncodeToString([]byte("not a png"))
	term.WriteString("\x1b]1337;File=inline=1:" + junk + "\x07")
	if term.ImageCount() != 0 {
		t.Errorf("expected undecodable image dropped, got %d images", term.ImageCount())
	}
}

func TestITerm2File_NonInlineOffersTransfer(t *testing.T) {
	rec := &recordingFileTransfer{}
	term := New(WithSize(24, 80), WithFileTransfer(rec))

	content := []byte("file contents here")
	name := base64.StdEncoding.EncodeToString([]byte("notes.txt"))
	payload := base64.StdEncoding.EncodeToString(content)
	term.WriteString("\x1b]1337;File=name=" + name + ";inline=0:" + payload + "\x07")

	if !rec.called {
		t.Fatal("expected file-transfer offer")
	}
	defer os.Remove(rec.path)

	if rec.name != "notes.txt" {
		t.Errorf("expected declared name, got %q", rec.name)
	}
	staged, err := os.ReadFile(rec.path)
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if !bytes.Equal(staged, content) {
		t.Errorf("staged content mismatch: %q", staged)
	}
	if rec.size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), rec.size)
	}
}

func TestITerm2File_LargePayloadStreamsToTempFile(t *testing.T) {
	rec := &recordingFileTransfer{}
	term := New(WithSize(24, 80), WithFileTransfer(rec))

	// Over the 1 MiB base64 threshold: the decoder must stage to disk
	// rather than buffer the whole payload.
	payload := strings.Repeat("AAAA", (inlineImageStagingThreshold/4)+1024)
	term.WriteString("\x1b]1337;File=inline=0:" + payload + "\x07")

	if !rec.called {
		t.Fatal("expected file-transfer offer for large payload")
	}
	defer os.Remove(rec.path)

	info, err := os.Stat(rec.path)
	if err != nil {
		t.Fatalf("staged file missing: %v", err)
	}
	wantSize := int64(len(payload) / 4 * 3)
	if info.Size() != wantSize {
		t.Errorf("expected %d decoded bytes staged, got %d", wantSize, info.Size())
	}
}

func TestITerm2File_DefaultProviderConsumesSilently(t *testing.T) {
	term := New(WithSize(24, 80))

	payload := base64.StdEncoding.EncodeToString([]byte("temp data"))
	term.WriteString("\x1b]1337;File=inline=0:" + payload + "\x07")
	// NoopFileTransfer removes the staged file; the sequence must simply be
	// consumed without printing anything.
	if term.String() != "" {
		t.Errorf("file transfer must not print, got %q", term.String())
	}
}

func TestInlineImageDimension(t *testing.T) {
	cases := []struct {
		spec string
		want int
	}{
		{"", 0},
		{"auto", 0},
		{"7", 7},
		{"35px", 4},  // ceil(35 / 10) cells
		{"50%", 0},   // percentage needs viewport context; natural size
		{"junk", 0},
	}
	for _, tc := range cases {
		if got := inlineImageDimension(tc.spec, 100, 10); got != tc.want {
			t.Errorf("%q: expected %d, got %d", tc.spec, tc.want, got)
		}
	}
}
