package set

type Set[T comparable] map[T]struct{}

func New[T comparable]() Set[T] {
	return make(Set[T])
}

func (set Set[T]) Add(t T) {
	set[t] = struct{}{}
}

func (set Set[T]) Has(t T) bool {
	_, ok := set[t]
	return ok
}

// AddIfAbsent adds t and reports whether it was not yet present.
func (set Set[T]) AddIfAbsent(t T) bool {
	if set.Has(t) {
		return false
	}
	set.Add(t)
	return true
}

func Of[T comparable](ts ...T) Set[T] {
	res := New[T]()
	for _, t := range ts {
		res.Add(t)
	}
	return res
}
