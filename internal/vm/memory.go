package vm

import (
	"fmt"
	"math"

	"intcode/internal/code"
	"intcode/internal/limits"
)

// denseSlack bounds how far past the dense extent a write may land before
// it is stored sparsely instead of growing the backing slice.
const denseSlack = 1 << 16

// Memory is the VM tape. Cells never written read as zero; writes past the
// end extend it. Addresses close to the current extent grow a contiguous
// slice, far-away ones go to a sparse map.
type Memory struct {
	cells  []int64
	sparse map[int64]int64
	extent int64
	budget *limits.Budget
}

func NewMemory(p code.Program) *Memory {
	cells := append([]int64(nil), p...)
	return &Memory{cells: cells, extent: int64(len(cells))}
}

// SetBudget limits the cells the tape may claim beyond the loaded program.
func (m *Memory) SetBudget(b *limits.Budget) {
	m.budget = b
}

func (m *Memory) Get(addr int64) (int64, error) {
	if addr < 0 {
		return 0, fmt.Errorf("%w %d", ErrNegativeAddress, addr)
	}
	if addr < int64(len(m.cells)) {
		return m.cells[addr], nil
	}
	return m.sparse[addr], nil
}

func (m *Memory) Set(addr, value int64) error {
	if addr < 0 {
		return fmt.Errorf("%w %d", ErrNegativeAddress, addr)
	}
	n := int64(len(m.cells))
	if addr < n {
		m.cells[addr] = value
		return nil
	}

	if addr < n+denseSlack {
		return m.grow(addr, value)
	}

	if _, ok := m.sparse[addr]; !ok {
		if err := m.budget.Charge(1); err != nil {
			return err
		}
		if m.sparse == nil {
			m.sparse = map[int64]int64{}
		}
	}
	m.sparse[addr] = value
	m.reach(addr)
	return nil
}

func (m *Memory) grow(addr, value int64) error {
	n := int64(len(m.cells))
	absorbed := int64(0)
	for a := range m.sparse {
		if a <= addr {
			absorbed++
		}
	}
	if err := m.budget.Charge(addr + 1 - n - absorbed); err != nil {
		return err
	}

	m.cells = append(m.cells, make([]int64, addr+1-n)...)
	for a, v := range m.sparse {
		if a <= addr {
			m.cells[a] = v
			delete(m.sparse, a)
		}
	}
	m.cells[addr] = value
	m.reach(addr)
	return nil
}

// reach moves the extent past addr. The top address saturates the extent at
// math.MaxInt64 rather than wrapping.
func (m *Memory) reach(addr int64) {
	switch {
	case addr == math.MaxInt64:
		m.extent = addr
	case addr >= m.extent:
		m.extent = addr + 1
	}
}

// Len is one past the highest address ever held, capped at math.MaxInt64.
func (m *Memory) Len() int64 { return m.extent }

// Snapshot copies the contiguous part of the tape. Sparse cells are not
// included.
func (m *Memory) Snapshot() []int64 {
	return append([]int64(nil), m.cells...)
}
