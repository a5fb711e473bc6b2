package engine

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/multierr"

	"github.com/melihbirim/sievik/internal/qerror"
)

// inputSource is an opened query input. Regular files keep the *os.File
// for mapping; pipes and compressed files expose a stream instead.
type inputSource struct {
	file       *os.File
	stream     io.Reader
	size       int64
	compressed bool
	closers    []io.Closer
}

func (s *inputSource) close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i].Close())
	}
	return err
}

// openInput opens path and classifies it for the router. `.gz` and `.zst`
// files decompress transparently; they scan like streams because the
// decompressed bytes have no random access.
func openInput(path string) (*inputSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, qerror.Wrap(err, qerror.CodeIO, "open %s", path)
	}

	src := &inputSource{closers: []io.Closer{f}}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, qerror.Wrap(err, qerror.CodeIO, "stat %s", path)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, qerror.Wrap(err, qerror.CodeIO, "open gzip %s", path)
		}
		src.stream = zr
		src.compressed = true
		src.closers = append(src.closers, zr)
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, qerror.Wrap(err, qerror.CodeIO, "open zstd %s", path)
		}
		rc := zr.IOReadCloser()
		src.stream = rc
		src.compressed = true
		src.closers = append(src.closers, rc)
	case !info.Mode().IsRegular():
		// Named pipe or device: no mapping, no seeking.
		src.stream = f
	default:
		src.file = f
		src.size = info.Size()
	}

	return src, nil
}
