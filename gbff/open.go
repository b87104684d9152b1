package gbff

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/klauspost/pgzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Decompress returns a reader with the uncompressed content of rd.
// Gzip input is detected by its magic number and decompressed with
// the parallel gzip reader, any other input is returned as is.
func Decompress(rd io.Reader) (io.ReadCloser, error) {
	brd := bufio.NewReader(rd)
	magic, err := brd.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if bytes.Equal(magic, gzipMagic) {
		log.Debug("Input is gzip compressed")
		zrd, err := pgzip.NewReader(brd)
		if err != nil {
			return nil, err
		}
		return zrd, nil
	}
	return io.NopCloser(brd), nil
}

// File is a GenBank file opened for reading.
type File struct {
	*Reader
	f   *os.File
	zrd io.ReadCloser
}

// Open opens a (possibly gzip-compressed) GenBank file.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewFile(f, f)
}

// NewFile creates a File reading from rd, f is closed by Close. This
// allows wrapping the file reader, e.g. to report progress.
func NewFile(f *os.File, rd io.Reader) (*File, error) {
	zrd, err := Decompress(rd)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Reader: NewReader(zrd), f: f, zrd: zrd}, nil
}

// Close closes the decompressor and the underlying file.
func (f *File) Close() error {
	zerr := f.zrd.Close()
	if err := f.f.Close(); err != nil {
		return err
	}
	return zerr
}
