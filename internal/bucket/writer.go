package bucket

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"path/filepath"

	"github.com/google/renameio"

	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/index"
)

// Info describes one published bucket file.
type Info struct {
	Key   string
	Path  string
	Words int
	Bytes int64
}

// Write publishes one bucket under dir. The file appears atomically: it
// is written to a temp file in the same directory and renamed into place
// only after a successful flush, so a crash or write failure never leaves
// a partial bucket visible.
func Write(dir string, b index.Bucket) (Info, error) {
	path := filepath.Join(dir, FileName(b.Key))

	t, err := renameio.TempFile(dir, path)
	if err != nil {
		return Info{}, errors.New(errors.ErrCodeBucketWrite,
			fmt.Sprintf("creating temp file for bucket %s: %v", b.Key, err), err)
	}
	defer t.Cleanup()

	n, err := writeTo(t, b)
	if err != nil {
		return Info{}, errors.New(errors.ErrCodeBucketWrite,
			fmt.Sprintf("writing bucket %s: %v", b.Key, err), err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return Info{}, errors.New(errors.ErrCodeBucketWrite,
			fmt.Sprintf("publishing bucket %s: %v", b.Key, err), err)
	}

	return Info{Key: b.Key, Path: path, Words: len(b.Entries), Bytes: n}, nil
}

// writeTo streams the bucket format to w and returns the byte count.
func writeTo(w io.Writer, b index.Bucket) (int64, error) {
	if len(b.Entries) > math.MaxUint32 {
		return 0, fmt.Errorf("bucket %s has %d words, exceeds format limit", b.Key, len(b.Entries))
	}

	bw := bufio.NewWriter(w)
	var off int64

	put := func(v any) error {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
		off += int64(binary.Size(v))
		return nil
	}

	// header
	if err := put(uint32(magic)); err != nil {
		return 0, err
	}
	if err := put(uint16(formatVersion)); err != nil {
		return 0, err
	}
	if err := put(uint16(0)); err != nil {
		return 0, err
	}
	if err := put(uint32(len(b.Entries))); err != nil {
		return 0, err
	}

	// postings, remembering where each word's block starts
	offsets := make([]uint64, len(b.Entries))
	for i, e := range b.Entries {
		offsets[i] = uint64(off)
		if err := put(uint32(len(e.Postings))); err != nil {
			return 0, err
		}
		for _, p := range e.Postings {
			if err := put(p.DocID); err != nil {
				return 0, err
			}
			if err := put(uint32(len(p.Positions))); err != nil {
				return 0, err
			}
			if err := put(p.Positions); err != nil {
				return 0, err
			}
		}
	}

	// dictionary, CRC'd so readers can detect truncation or corruption
	dictOff := uint64(off)
	crc := crc32.NewIEEE()
	dw := io.MultiWriter(bw, crc)
	var dictLen uint64
	putDict := func(v any) error {
		if err := binary.Write(dw, binary.LittleEndian, v); err != nil {
			return err
		}
		n := uint64(binary.Size(v))
		dictLen += n
		off += int64(n)
		return nil
	}
	for i, e := range b.Entries {
		if len(e.Word) > math.MaxUint16 {
			return 0, fmt.Errorf("word %q exceeds dictionary length limit", e.Word)
		}
		if err := putDict(uint16(len(e.Word))); err != nil {
			return 0, err
		}
		if err := putDict([]byte(e.Word)); err != nil {
			return 0, err
		}
		if err := putDict(offsets[i]); err != nil {
			return 0, err
		}
		if err := putDict(uint32(len(e.Postings))); err != nil {
			return 0, err
		}
	}

	// footer
	if err := put(dictOff); err != nil {
		return 0, err
	}
	if err := put(dictLen); err != nil {
		return 0, err
	}
	if err := put(crc.Sum32()); err != nil {
		return 0, err
	}
	if err := put(uint32(magic)); err != nil {
		return 0, err
	}

	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return off, nil
}
