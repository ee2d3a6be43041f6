package selection

// window is a FIFO ring of selected candidate indices with fixed capacity.
type window struct {
	items []int
	start int
	size  int
}

func newWindow(capacity int) *window {
	return &window{items: make([]int, capacity)}
}

// push appends idx, evicting the oldest entry when full.
func (w *window) push(idx int) {
	if w.size < len(w.items) {
		w.items[(w.start+w.size)%len(w.items)] = idx
		w.size++
		return
	}
	w.items[w.start] = idx
	w.start = (w.start + 1) % len(w.items)
}

func (w *window) len() int { return w.size }

// each visits entries oldest first.
func (w *window) each(fn func(idx int)) {
	for i := 0; i < w.size; i++ {
		fn(w.items[(w.start+i)%len(w.items)])
	}
}
