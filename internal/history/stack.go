package history

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Command is an undoable edit. Apply must either succeed completely or leave
// no trace; the same holds for Revert. Apply is called again on redo.
type Command interface {
	Apply() error
	Revert() error
	Describe() string
}

// Stack keeps applied commands for undo and reverted commands for redo.
type Stack struct {
	undo   []Command
	redo   []Command
	limit  int
	logger *zap.Logger
}

// NewStack returns an empty stack. A positive limit caps the undo depth; the
// oldest commands are dropped first.
func NewStack(limit int, logger *zap.Logger) *Stack {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Stack{limit: limit, logger: logger.Named("history")}
}

// Do applies cmd and pushes it for undo. The redo history is discarded.
// A command that fails to apply is not recorded.
func (s *Stack) Do(cmd Command) error {
	if err := cmd.Apply(); err != nil {
		s.logger.Debug("command failed", zap.String("command", cmd.Describe()), zap.Error(err))
		return fmt.Errorf("%s: %w", cmd.Describe(), err)
	}

	s.push(cmd)
	s.redo = nil

	s.logger.Debug("command applied", zap.String("command", cmd.Describe()), zap.Int("depth", len(s.undo)))

	return nil
}

// Undo reverts the most recent command.
func (s *Stack) Undo() error {
	if len(s.undo) == 0 {
		return ErrNothingToUndo
	}

	cmd := s.undo[len(s.undo)-1]
	if err := cmd.Revert(); err != nil {
		return fmt.Errorf("undo %s: %w", cmd.Describe(), err)
	}

	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, cmd)

	s.logger.Debug("command reverted", zap.String("command", cmd.Describe()))

	return nil
}

// Redo re-applies the most recently reverted command.
func (s *Stack) Redo() error {
	if len(s.redo) == 0 {
		return ErrNothingToRedo
	}

	cmd := s.redo[len(s.redo)-1]
	if err := cmd.Apply(); err != nil {
		return fmt.Errorf("redo %s: %w", cmd.Describe(), err)
	}

	s.redo = s.redo[:len(s.redo)-1]
	s.push(cmd)

	s.logger.Debug("command reapplied", zap.String("command", cmd.Describe()))

	return nil
}

// CanUndo reports whether Undo has something to revert.
func (s *Stack) CanUndo() bool {
	return len(s.undo) > 0
}

// CanRedo reports whether Redo has something to apply.
func (s *Stack) CanRedo() bool {
	return len(s.redo) > 0
}

// UndoDescription describes the command Undo would revert, or "".
func (s *Stack) UndoDescription() string {
	if len(s.undo) == 0 {
		return ""
	}

	return s.undo[len(s.undo)-1].Describe()
}

// RedoDescription describes the command Redo would apply, or "".
func (s *Stack) RedoDescription() string {
	if len(s.redo) == 0 {
		return ""
	}

	return s.redo[len(s.redo)-1].Describe()
}

// Clear drops all history.
func (s *Stack) Clear() {
	s.undo = nil
	s.redo = nil
}

func (s *Stack) push(cmd Command) {
	s.undo = append(s.undo, cmd)

	if s.limit > 0 && len(s.undo) > s.limit {
		s.undo = append([]Command(nil), s.undo[len(s.undo)-s.limit:]...)
	}
}
