// Package sf provides a generic single-flight group for deduplicating
// concurrent function calls with the same key.
//
// If several goroutines call [Group.Do] with the same key at the same time,
// only the first executes its function; the others block and receive the same
// result. The cache package uses it to compute a missing entry exactly once
// even when many actors of an overflow chain miss at the same moment:
//
//	g := sf.New[int]()
//	n, _, err := g.Do("count:book", func() (int, error) {
//	    return countWords(book), nil
//	})
package sf
