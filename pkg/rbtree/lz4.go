package rbtree

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// uint32ByteSize is the number of bytes in a uint32.
const uint32ByteSize = 4

// ErrShortBlock is returned when a decompressed block does not fill the destination slice.
var ErrShortBlock = errors.New("decompressed block is shorter than expected")

// CompressUInt32Slice compresses a slice of uint32-s with LZ4.
func CompressUInt32Slice(data []uint32) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(data) * uint32ByteSize)

	writeErr := binary.Write(buf, binary.LittleEndian, data)
	if writeErr != nil {
		return nil
	}

	var compressor lz4.Compressor

	// A destination of CompressBlockBound size never reports incompressible input.
	compressed := make([]byte, lz4.CompressBlockBound(buf.Len()))

	written, err := compressor.CompressBlock(buf.Bytes(), compressed)
	if err != nil || written == 0 {
		return nil
	}

	return compressed[:written]
}

// DecompressUInt32Slice decompresses a slice of uint32-s previously compressed with LZ4.
// `result` must be preallocated with the original length.
func DecompressUInt32Slice(data []byte, result []uint32) error {
	decompressed := make([]byte, len(result)*uint32ByteSize)

	read, err := lz4.UncompressBlock(data, decompressed)
	if err != nil {
		return fmt.Errorf("lz4 uncompress: %w", err)
	}

	if read != len(decompressed) {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortBlock, read, len(decompressed))
	}

	readErr := binary.Read(bytes.NewReader(decompressed), binary.LittleEndian, result)
	if readErr != nil {
		return fmt.Errorf("decode uint32 block: %w", readErr)
	}

	return nil
}

// DeltaEncodeUInt32Slice replaces each element with the difference from its
// predecessor, in place. Sorted input turns into small repetitive values.
func DeltaEncodeUInt32Slice(data []uint32) {
	for i := len(data) - 1; i > 0; i-- {
		data[i] -= data[i-1]
	}
}

// DeltaDecodeUInt32Slice restores the values produced by DeltaEncodeUInt32Slice in place.
func DeltaDecodeUInt32Slice(data []uint32) {
	for i := 1; i < len(data); i++ {
		data[i] += data[i-1]
	}
}
