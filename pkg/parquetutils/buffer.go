// nolint: wrapcheck
package parquetutils

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/source"
)

// Make sure BufferFile implements the ParquetFile interface.
var _ source.ParquetFile = (*BufferFile)(nil)

// BufferFile is an in-memory parquet file. The archiver writes a run's
// rows into it, then uploads the accumulated bytes in one shot.
type BufferFile struct {
	underlying *parquetbuffer.BufferFile
}

// NewBufferFile creates an empty in-memory parquet buffer.
func NewBufferFile() *BufferFile {
	return &BufferFile{
		underlying: parquetbuffer.NewBufferFile(),
	}
}

// NewBufferFileFrom creates an in-memory parquet buffer backed by the given
// bytes. It uses the provided slice as its buffer.
func NewBufferFileFrom(s []byte) *BufferFile {
	return &BufferFile{
		underlying: parquetbuffer.NewBufferFileFromBytesNoAlloc(s),
	}
}

func (bf *BufferFile) Create(string) (source.ParquetFile, error) {
	return NewBufferFile(), nil
}

func (bf *BufferFile) Open(string) (source.ParquetFile, error) {
	return NewBufferFileFrom(bf.Bytes()), nil
}

func (bf *BufferFile) Seek(offset int64, whence int) (int64, error) {
	return bf.underlying.Seek(offset, whence)
}

func (bf *BufferFile) Read(p []byte) (n int, err error) {
	return bf.underlying.Read(p)
}

func (bf *BufferFile) Write(p []byte) (n int, err error) {
	return bf.underlying.Write(p)
}

func (bf *BufferFile) Close() error {
	return bf.underlying.Close()
}

// Bytes returns the written parquet file contents.
func (bf *BufferFile) Bytes() []byte {
	return bf.underlying.Bytes()
}
