package vm

import "fmt"

// Run executes until Halt and returns all output produced by this VM,
// including values already returned by RunToOut.
func (m *VM) Run() ([]int64, error) {
	if err := m.runnable(); err != nil {
		return nil, err
	}
	for m.state == Running {
		if _, _, err := m.step(); err != nil {
			return nil, err
		}
	}
	return m.Output(), nil
}

// RunWith applies the patches and then runs to completion.
func (m *VM) RunWith(patches ...Patch) error {
	if err := m.runnable(); err != nil {
		return err
	}
	for _, p := range patches {
		if err := m.mem.Set(p.Addr, p.Value); err != nil {
			return fmt.Errorf("patch [%d]=%d: %w", p.Addr, p.Value, err)
		}
	}
	_, err := m.Run()
	return err
}

// RunToOut executes until the next output value and suspends. ok is false
// when the program halts without producing another value; the call after
// that returns ErrAlreadyHalted.
func (m *VM) RunToOut() (v int64, ok bool, err error) {
	if err := m.runnable(); err != nil {
		return 0, false, err
	}
	for m.state == Running {
		v, emitted, err := m.step()
		if err != nil {
			return 0, false, err
		}
		if emitted {
			m.log.Debugf("suspended at ip %d after output %d", m.ip, v)
			return v, true, nil
		}
	}
	return 0, false, nil
}
