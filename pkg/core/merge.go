package core

// Merge folds record layers into one map keyed by phrase. Each entry is
// sanitized; entries from later layers overwrite equal keys from earlier ones.
func Merge(layers ...[]Record) map[string]Record {
	merged := make(map[string]Record)
	for _, layer := range layers {
		for _, r := range layer {
			clean, ok := SanitizeRecord(r)
			if !ok {
				continue
			}
			merged[clean.Phrase] = clean
		}
	}
	return merged
}

// Sorted returns the values of m ordered by SortRecords.
func Sorted(m map[string]Record) []Record {
	out := make([]Record, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	SortRecords(out)
	return out
}
