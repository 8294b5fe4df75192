package collection

func Map[T any, V any](sources []T, f func(T) V) []V {
	results := make([]V, len(sources))
	for i, v := range sources {
		results[i] = f(v)
	}
	return results
}

func FlatMap[T any, V any](sources []T, f func(T) []V) []V {
	results := make([]V, 0)
	for _, v := range sources {
		results = append(results, f(v)...)
	}
	return results
}

func GroupBy[T any, V comparable](sources []T, f func(T) V) map[V][]T {
	var result = make(map[V][]T)
	for _, v := range sources {
		result[f(v)] = append(result[f(v)], v)
	}
	return result
}

func AssociateBy[T any, V comparable](sources []T, f func(T) V) map[V]T {
	var result = make(map[V]T)
	for _, v := range sources {
		result[f(v)] = v
	}
	return result
}

func DistinctBy[T any, K comparable](s []T, keySelector func(T) K) []T {
	keys := make(map[K]bool)
	result := make([]T, 0)
	for _, item := range s {
		key := keySelector(item)
		if _, exists := keys[key]; !exists {
			keys[key] = true
			result = append(result, item)
		}
	}
	return result
}

func Filter[T any](s []T, predicate func(T) bool) []T {
	result := make([]T, 0, len(s))
	for _, item := range s {
		if predicate(item) {
			result = append(result, item)
		}
	}
	return result
}
