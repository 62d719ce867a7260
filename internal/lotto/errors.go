package lotto

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnknownTier  = errors.New("unknown prize tier")
)

// InvalidInputError reports a malformed drawing, history or pick.
type InvalidInputError struct {
	Field  string // e.g. "history[3]", "pick"
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

// UnknownTierError reports a malformed prize table.
type UnknownTierError struct {
	Hits   int
	Reason string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("prize tier %d: %s", e.Hits, e.Reason)
}

func (e *UnknownTierError) Is(target error) bool { return target == ErrUnknownTier }

func historyField(i int) string {
	return "history[" + strconv.Itoa(i) + "]"
}
