package chunker

// span is a half-open rune range [start, end) of the record text.
type span struct {
	start, end int
}

// splitRecursive cuts text into contiguous pieces of at most budget runes.
// It uses the first separator that occurs in text and recurses into
// oversized pieces with the remaining separators. Each separator stays at
// the start of the piece that follows it, so the pieces concatenate back
// to text.
func splitRecursive(text []rune, separators []string, budget int) [][]rune {
	if len(text) <= budget {
		return [][]rune{text}
	}

	sep, rest := pickSeparator(text, separators)
	if sep == "" {
		return cutEvery(text, budget)
	}

	var out [][]rune
	for _, piece := range splitKeepingSeparator(text, []rune(sep)) {
		if len(piece) <= budget {
			out = append(out, piece)
			continue
		}
		out = append(out, splitRecursive(piece, rest, budget)...)
	}
	return out
}

// pickSeparator returns the first separator present in text and the
// separators finer than it.
func pickSeparator(text []rune, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" || indexRunes(text, []rune(sep), 0) >= 0 {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitKeepingSeparator splits text before every occurrence of sep.
// Empty pieces are dropped.
func splitKeepingSeparator(text, sep []rune) [][]rune {
	var pieces [][]rune
	start := 0
	for {
		idx := indexRunes(text, sep, start+1)
		if idx < 0 {
			break
		}
		pieces = append(pieces, text[start:idx])
		start = idx
	}
	if start < len(text) {
		pieces = append(pieces, text[start:])
	}
	return pieces
}

// cutEvery splits text into consecutive pieces of n runes.
func cutEvery(text []rune, n int) [][]rune {
	pieces := make([][]rune, 0, len(text)/n+1)
	for start := 0; start < len(text); start += n {
		end := start + n
		if end > len(text) {
			end = len(text)
		}
		pieces = append(pieces, text[start:end])
	}
	return pieces
}

// mergeSpans packs consecutive pieces greedily into spans. The first span
// may hold up to first runes, later spans up to budget.
//
// With first = budget + overlap and pieces of at most budget runes, every
// span that is followed by another ends at or after overlap, so the
// overlap window taken before the next span never reaches past the start
// of the text.
func mergeSpans(pieces [][]rune, first, budget int) []span {
	var spans []span
	pos := 0
	cur := span{}
	limit := first
	for _, piece := range pieces {
		n := len(piece)
		if cur.end > cur.start && cur.end-cur.start+n > limit {
			spans = append(spans, cur)
			cur = span{start: pos, end: pos}
			limit = budget
		}
		cur.end += n
		pos += n
	}
	if cur.end > cur.start {
		spans = append(spans, cur)
	}
	return spans
}

// indexRunes returns the index of the first occurrence of sep in text at or
// after from, or -1.
func indexRunes(text, sep []rune, from int) int {
	if len(sep) == 0 {
		return -1
	}
	for i := from; i+len(sep) <= len(text); i++ {
		match := true
		for j, r := range sep {
			if text[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
