// Package compress provides the codecs used for compressed result
// snapshots: none, zstd, s2 and lz4.
package compress

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Type identifies a compression algorithm.
type Type uint8

const (
	None Type = iota + 1
	Zstd
	S2
	LZ4
)

func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case Zstd:
		return "Zstd"
	case S2:
		return "S2"
	case LZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Extension returns the file suffix for t, "" for None.
func (t Type) Extension() string {
	switch t {
	case Zstd:
		return ".zst"
	case S2:
		return ".s2"
	case LZ4:
		return ".lz4"
	}
	return ""
}

// ParseType maps a name as printed by String, in any case, to its Type.
// "" is None.
func ParseType(name string) (Type, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return None, nil
	case "zstd", "zst":
		return Zstd, nil
	case "s2":
		return S2, nil
	case "lz4":
		return LZ4, nil
	}
	return 0, fmt.Errorf("compress: unknown compression type %q", name)
}

// Codec compresses and decompresses whole payloads. Returned slices are
// owned by the caller; inputs are not modified.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

var builtinCodecs = map[Type]Codec{
	None: NewNoOpCompressor(),
	Zstd: NewZstdCompressor(),
	S2:   NewS2Compressor(),
	LZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in codec for t.
func GetCodec(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("compress: unsupported compression type: %s", t)
}

// ForPath picks the compression type from the last extension of path:
// .zst, .s2 or .lz4; anything else is None.
func ForPath(path string) Type {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".s2":
		return S2
	case ".lz4":
		return LZ4
	}
	return None
}
