package verify

// Mismatch is one element where the device disagrees with the oracle.
type Mismatch struct {
	Pos  int
	Want uint16
	Got  uint16
}

// Compare reports whether decoded equals oracle over the full vector.
func Compare(oracle, decoded []uint16) bool {
	if len(oracle) != len(decoded) {
		return false
	}

	for i := range oracle {
		if oracle[i] != decoded[i] {
			return false
		}
	}

	return true
}

// Mismatches lists up to limit differing elements. A limit <= 0 lists all of
// them. Positions past the shorter vector are reported with Got or Want 0.
func Mismatches(oracle, decoded []uint16, limit int) []Mismatch {
	var list []Mismatch

	n := max(len(oracle), len(decoded))
	for i := 0; i < n; i++ {
		if limit > 0 && len(list) >= limit {
			break
		}

		var want, got uint16
		if i < len(oracle) {
			want = oracle[i]
		}
		if i < len(decoded) {
			got = decoded[i]
		}

		if want != got || i >= len(oracle) || i >= len(decoded) {
			list = append(list, Mismatch{Pos: i, Want: want, Got: got})
		}
	}

	return list
}
