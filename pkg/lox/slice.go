package lox

// Map как lo.Map, но iteratee без индекса, чтобы передавать конструкторы напрямую.
func Map[T, R any](collection []T, iteratee func(item T) R) []R {
	result := make([]R, len(collection))

	for i, item := range collection {
		result[i] = iteratee(item)
	}

	return result
}
