package bucket

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sort"

	"github.com/Aman-CERP/wordex/internal/errors"
	"github.com/Aman-CERP/wordex/internal/index"
)

type dictEntry struct {
	word     string
	offset   uint64
	docCount uint32
}

// Reader looks words up in one published bucket file. The dictionary is
// loaded and verified once at open; postings are read on demand.
type Reader struct {
	f    *os.File
	path string
	dict []dictEntry
}

// Open validates the bucket file and loads its dictionary into memory.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeBucketWrite,
			fmt.Sprintf("opening bucket %s: %v", path, err), err)
	}
	r := &Reader{f: f, path: path}
	if err := r.load(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Words returns the dictionary size.
func (r *Reader) Words() int {
	return len(r.dict)
}

func (r *Reader) corrupt(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return errors.New(errors.ErrCodeBucketWrite,
		fmt.Sprintf("bucket %s corrupt: %s", r.path, msg), nil)
}

func (r *Reader) load() error {
	st, err := r.f.Stat()
	if err != nil {
		return errors.Wrap(errors.ErrCodeBucketWrite, err)
	}
	if st.Size() < headerSize+footerSize {
		return r.corrupt("file too short (%d bytes)", st.Size())
	}

	var head struct {
		Magic     uint32
		Version   uint16
		Reserved  uint16
		WordCount uint32
	}
	if err := binary.Read(io.NewSectionReader(r.f, 0, headerSize), binary.LittleEndian, &head); err != nil {
		return r.corrupt("reading header: %v", err)
	}
	if head.Magic != magic {
		return r.corrupt("bad magic 0x%08x", head.Magic)
	}
	if head.Version != formatVersion {
		return r.corrupt("unsupported format version %d", head.Version)
	}

	var foot struct {
		DictOffset uint64
		DictLen    uint64
		DictCRC    uint32
		Magic      uint32
	}
	if err := binary.Read(io.NewSectionReader(r.f, st.Size()-footerSize, footerSize), binary.LittleEndian, &foot); err != nil {
		return r.corrupt("reading footer: %v", err)
	}
	if foot.Magic != magic {
		return r.corrupt("bad footer magic 0x%08x", foot.Magic)
	}
	if foot.DictOffset+foot.DictLen != uint64(st.Size()-footerSize) {
		return r.corrupt("dictionary bounds do not match file size")
	}

	raw := make([]byte, foot.DictLen)
	if _, err := r.f.ReadAt(raw, int64(foot.DictOffset)); err != nil {
		return r.corrupt("reading dictionary: %v", err)
	}
	if sum := crc32.ChecksumIEEE(raw); sum != foot.DictCRC {
		return r.corrupt("dictionary checksum mismatch (got 0x%08x, want 0x%08x)", sum, foot.DictCRC)
	}

	dict := make([]dictEntry, 0, head.WordCount)
	buf := bytes.NewReader(raw)
	for i := uint32(0); i < head.WordCount; i++ {
		var wordLen uint16
		if err := binary.Read(buf, binary.LittleEndian, &wordLen); err != nil {
			return r.corrupt("truncated dictionary entry %d", i)
		}
		word := make([]byte, wordLen)
		if _, err := io.ReadFull(buf, word); err != nil {
			return r.corrupt("truncated word in dictionary entry %d", i)
		}
		var e dictEntry
		e.word = string(word)
		if err := binary.Read(buf, binary.LittleEndian, &e.offset); err != nil {
			return r.corrupt("truncated offset in dictionary entry %d", i)
		}
		if err := binary.Read(buf, binary.LittleEndian, &e.docCount); err != nil {
			return r.corrupt("truncated doc count in dictionary entry %d", i)
		}
		if len(dict) > 0 && e.word <= dict[len(dict)-1].word {
			return r.corrupt("dictionary not sorted at entry %d (%q)", i, e.word)
		}
		dict = append(dict, e)
	}
	if buf.Len() != 0 {
		return r.corrupt("%d trailing dictionary bytes", buf.Len())
	}

	r.dict = dict
	return nil
}

// Lookup returns the postings for word, or found=false when the word is
// not in this bucket.
func (r *Reader) Lookup(word string) ([]index.Posting, bool, error) {
	i := sort.Search(len(r.dict), func(i int) bool {
		return r.dict[i].word >= word
	})
	if i >= len(r.dict) || r.dict[i].word != word {
		return nil, false, nil
	}

	sec := io.NewSectionReader(r.f, int64(r.dict[i].offset), 1<<62)
	var count uint32
	if err := binary.Read(sec, binary.LittleEndian, &count); err != nil {
		return nil, false, r.corrupt("reading postings for %q: %v", word, err)
	}
	if count != r.dict[i].docCount {
		return nil, false, r.corrupt("postings count for %q disagrees with dictionary", word)
	}

	postings := make([]index.Posting, 0, count)
	for j := uint32(0); j < count; j++ {
		var docID, posCount uint32
		if err := binary.Read(sec, binary.LittleEndian, &docID); err != nil {
			return nil, false, r.corrupt("truncated posting %d for %q", j, word)
		}
		if err := binary.Read(sec, binary.LittleEndian, &posCount); err != nil {
			return nil, false, r.corrupt("truncated posting %d for %q", j, word)
		}
		positions := make([]uint32, posCount)
		if err := binary.Read(sec, binary.LittleEndian, positions); err != nil {
			return nil, false, r.corrupt("truncated positions in posting %d for %q", j, word)
		}
		postings = append(postings, index.Posting{DocID: docID, Positions: positions})
	}
	return postings, true, nil
}

// AllWords returns the bucket's dictionary in sorted order.
func (r *Reader) AllWords() []string {
	words := make([]string, len(r.dict))
	for i, e := range r.dict {
		words[i] = e.word
	}
	return words
}
