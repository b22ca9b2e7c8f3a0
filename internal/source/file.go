package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/shortly/internal/extract"
	"github.com/hyperifyio/shortly/internal/fetch"
	"github.com/hyperifyio/shortly/internal/summarize"
)

// maxFileBytes caps how much of a local file or stdin is read.
const maxFileBytes = 16 << 20

// File reads a local file, or Stdin when the target is "-". HTML content is
// run through Extractor; anything else is treated as plain text.
type File struct {
	Stdin     io.Reader
	Extractor extract.Extractor
}

func (f *File) Text(_ context.Context, target string) (string, error) {
	var (
		b   []byte
		err error
	)
	if strings.TrimSpace(target) == "-" {
		in := f.Stdin
		if in == nil {
			in = os.Stdin
		}
		b, err = io.ReadAll(io.LimitReader(in, maxFileBytes))
	} else {
		b, err = readFile(target)
	}
	if err != nil {
		return "", err
	}
	if !looksLikeHTML(target, b) {
		return summarize.Normalize(string(fetch.ToUTF8(b, "text/plain"))), nil
	}
	ex := f.Extractor
	if ex == nil {
		ex = extract.HeuristicExtractor{}
	}
	return ex.Extract(fetch.ToUTF8(b, "text/html"), "").Text, nil
}

func readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()
	b, err := io.ReadAll(io.LimitReader(fh, maxFileBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return b, nil
}

func looksLikeHTML(path string, b []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	case ".txt", ".md":
		return false
	}
	return strings.HasPrefix(http.DetectContentType(b), "text/html")
}
