package browse

import "strings"

// lessHumane implements a "humane order" comparison: lexicographic
// comparison interleaved with numeric comparison of embedded digit runs,
// case-insensitive, so "test2" sorts before "test10".
func lessHumane(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	i, j := 0, 0
	for i < len(la) && j < len(lb) {
		ca, cb := la[i], lb[j]
		if isDigit(ca) && isDigit(cb) {
			na, ei := scanDigits(la, i)
			nb, ej := scanDigits(lb, j)
			if na != nb {
				return na < nb
			}
			i, j = ei, ej
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(la)-i < len(lb)-j
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// scanDigits reads the run of digits starting at i and returns its
// numeric value along with the index just past the run.
func scanDigits(s string, i int) (int64, int) {
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	var n int64
	for k := start; k < i; k++ {
		n = n*10 + int64(s[k]-'0')
	}
	return n, i
}
