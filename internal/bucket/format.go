// Package bucket reads and writes the on-disk bucket files that hold the
// published index. Each bucket is one contiguous lexicographic slice of
// the word space, written atomically and immutable afterwards.
//
// File layout (all integers little-endian):
//
//	header    magic u32, version u16, reserved u16, wordCount u32
//	postings  per word: count u32, then per posting:
//	          docID u32, positionCount u32, positions []u32
//	dict      per word: wordLen u16, word bytes, postingsOffset u64, docCount u32
//	footer    dictOffset u64, dictLen u64, dictCRC u32, magic u32
//
// The file is written strictly sequentially so it can stream through an
// atomic-rename temp file without seeking; readers locate the dictionary
// through the fixed-size footer at EOF and verify it with CRC-32.
package bucket

const (
	magic         = 0x57445831 // "WDX1"
	formatVersion = 1
	headerSize    = 12
	footerSize    = 24
)

// FileName returns the file a bucket key is published under.
func FileName(key string) string {
	return "bucket-" + key + ".wdx"
}
