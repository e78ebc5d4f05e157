package index

// Bucket is one contiguous lexicographic slice of the merged index. Keys
// are derived from the leading byte of each word after normalization:
// "num" for words starting with a digit, "a".."z" per letter, and "sym"
// for anything above 'z' (multi-byte UTF-8 lead bytes sort there).
type Bucket struct {
	Key     string
	Entries []Entry
}

// BucketKey returns the bucket a word belongs to.
func BucketKey(word string) string {
	if word == "" {
		return "num"
	}
	b := word[0]
	switch {
	case b < 'a':
		return "num"
	case b <= 'z':
		return string(b)
	default:
		return "sym"
	}
}

// Partition splits word-sorted entries into buckets. Because the key is a
// monotone function of the leading byte, each bucket covers a contiguous
// range of the sorted input and the buckets come out in lexicographic
// order of their contents. Empty buckets are not emitted.
func Partition(entries []Entry) []Bucket {
	var buckets []Bucket
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i == len(entries) || BucketKey(entries[i].Word) != BucketKey(entries[start].Word) {
			buckets = append(buckets, Bucket{
				Key:     BucketKey(entries[start].Word),
				Entries: entries[start:i],
			})
			start = i
		}
	}
	return buckets
}
