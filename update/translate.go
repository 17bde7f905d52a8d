package update

// TranslateSlice implements the "Unbounded* → *" translation spec.md §4.1
// and §4.5.2 require when converting user-supplied unbounded input into a
// capacity-checked internal representation: it fails with capErr before
// any element is touched if the input exceeds maxLen, otherwise maps each
// element with f.
func TranslateSlice[T any, R any](in []T, maxLen int, capErr error, f func(T) R) ([]R, error) {
	if len(in) > maxLen {
		return nil, capErr
	}
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out, nil
}

// TranslateMap is TranslateSlice's keyed-container counterpart: it fails
// with capErr if the input holds more than maxLen entries, otherwise maps
// each value with f. No code outside this package calls it.
func TranslateMap[K comparable, T any, R any](in map[K]T, maxLen int, capErr error, f func(T) R) (map[K]R, error) {
	if len(in) > maxLen {
		return nil, capErr
	}
	out := make(map[K]R, len(in))
	for k, v := range in {
		out[k] = f(v)
	}
	return out, nil
}
