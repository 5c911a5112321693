package limits

import "fmt"

// Budget counts memory cells claimed by a running program. A zero limit
// means unlimited.
type Budget struct {
	limit int64
	used  int64
}

func NewBudget(limit int64) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: limit}
}

func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}

func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used
}

func MaxMemoryMessage(limit int64) string {
	return fmt.Sprintf("max memory exceeded (%d cells)", limit)
}

type MaxMemoryError struct {
	Limit int64
}

func (e MaxMemoryError) Error() string {
	return MaxMemoryMessage(e.Limit)
}

// Charge claims n more cells.
func (b *Budget) Charge(n int64) error {
	if b == nil || b.limit == 0 {
		return nil
	}
	if n <= 0 {
		return nil
	}
	if b.used+n > b.limit {
		return MaxMemoryError{Limit: b.limit}
	}
	b.used += n
	return nil
}

func MaxStepsMessage(limit int64) string {
	return fmt.Sprintf("max instruction count exceeded (%d)", limit)
}

type MaxStepsError struct {
	Limit int64
}

func (e MaxStepsError) Error() string {
	return MaxStepsMessage(e.Limit)
}

// Steps counts executed instructions against an optional ceiling.
type Steps struct {
	limit int64
	count int64
}

func NewSteps(limit int64) Steps {
	if limit < 0 {
		limit = 0
	}
	return Steps{limit: limit}
}

func (s *Steps) Count() int64 { return s.count }

func (s *Steps) Tick() error {
	if s.limit > 0 && s.count >= s.limit {
		return MaxStepsError{Limit: s.limit}
	}
	s.count++
	return nil
}
