// SPDX-License-Identifier: GPL-2.0-or-later

package render

// SlotPool hands out the indices of a fixed set of shadow or cookie
// targets. Slots are returned all at once by Reset at frame start.
type SlotPool struct {
	used []uint64
	n    int
}

func NewSlotPool(n int) *SlotPool {
	return &SlotPool{used: make([]uint64, (n+63)/64), n: n}
}

func (p *SlotPool) Len() int {
	return p.n
}

// Acquire returns the lowest free slot.
func (p *SlotPool) Acquire() (int, bool) {
	for i := 0; i < p.n; i++ {
		w, b := i/64, uint(i%64)
		if p.used[w]&(1<<b) == 0 {
			p.used[w] |= 1 << b
			return i, true
		}
	}
	return -1, false
}

func (p *SlotPool) Release(i int) {
	if i < 0 || i >= p.n {
		return
	}
	p.used[i/64] &^= 1 << uint(i%64)
}

func (p *SlotPool) InUse() int {
	c := 0
	for i := 0; i < p.n; i++ {
		if p.used[i/64]&(1<<uint(i%64)) != 0 {
			c++
		}
	}
	return c
}

func (p *SlotPool) Reset() {
	for i := range p.used {
		p.used[i] = 0
	}
}
