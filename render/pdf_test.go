package render

import (
	"bytes"
	"compress/zlib"
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"appealdraft-backend/storage"
)

func TestLetterProducesPDF(t *testing.T) {
	content, pages, err := Letter("Dear Appeals Department,\n\nI am writing to appeal the denial of my claim.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		t.Error("output should start with the PDF header")
	}
	if pages != 1 {
		t.Errorf("short letter should fit one page, got %d", pages)
	}
}

func TestLetterEmptyText(t *testing.T) {
	content, pages, err := Letter("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(content) == 0 {
		t.Error("empty text should still render a document")
	}
	if pages != 1 {
		t.Errorf("expected a single empty page, got %d", pages)
	}
}

func TestLetterRoundTripThroughStorage(t *testing.T) {
	lines := []string{
		"Dear Appeals Department,",
		"I am writing to appeal the denial of claim CLM-42.",
		"The requested procedure is medically necessary.",
	}
	text := strings.Join(lines, "\n")

	content, _, err := Letter(text)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	path, err := store.Upload(ctx, "letter.pdf", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if _, err := store.SignedURL(ctx, path, 0); err != nil {
		t.Fatalf("stored letter should be addressable: %v", err)
	}

	reader, err := store.Download(ctx, path)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	defer reader.Close()

	fetched, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(fetched, content) {
		t.Fatal("stored bytes differ from rendered bytes")
	}

	// The letter text must survive into the fetched document, not just the
	// bytes: decompress the content streams and look for each line.
	inflated := inflateContentStreams(fetched)
	for _, line := range lines {
		if !strings.Contains(inflated, line) {
			t.Errorf("line %q missing from rendered document", line)
		}
	}
}

// inflateContentStreams decompresses every FlateDecode stream in a PDF and
// concatenates the results. Streams that fail to inflate are skipped.
func inflateContentStreams(pdf []byte) string {
	streamRE := regexp.MustCompile(`(?s)stream\r?\n(.*?)endstream`)

	var out strings.Builder
	for _, match := range streamRE.FindAllSubmatch(pdf, -1) {
		r, err := zlib.NewReader(bytes.NewReader(match[1]))
		if err != nil {
			continue
		}
		inflated, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}
		out.Write(inflated)
	}
	return out.String()
}

func TestLetterPageBreaks(t *testing.T) {
	paragraph := strings.Repeat("The requested procedure is medically necessary for the ongoing treatment of my condition. ", 10)
	long := strings.Repeat(paragraph+"\n\n", 30)

	_, pages, err := Letter(long)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pages < 2 {
		t.Errorf("long letter should break across pages, got %d", pages)
	}
}
