package utils

import (
	"fmt"
	"strings"
)

type Flags interface {
	~int32 | ~uint32
}

// FlagStringMapping renders bitflag values as a pipe-separated list of registered names
type FlagStringMapping[T Flags] struct {
	stringValues map[T]string
}

func NewFlagStringMapping[T Flags]() FlagStringMapping[T] {
	return FlagStringMapping[T]{stringValues: make(map[T]string)}
}

func (m FlagStringMapping[T]) Register(value T, str string) {
	m.stringValues[value] = str
}

func (m FlagStringMapping[T]) FlagsToString(value T) string {
	if value == 0 {
		return "None"
	}

	var sb strings.Builder
	var unknown T

	for i := 0; i < 32; i++ {
		bit := T(1) << i
		if value&bit == 0 {
			continue
		}

		str, ok := m.stringValues[bit]
		if !ok {
			unknown |= bit
			continue
		}

		if sb.Len() > 0 {
			sb.WriteRune('|')
		}
		sb.WriteString(str)
	}

	if unknown != 0 {
		if sb.Len() > 0 {
			sb.WriteRune('|')
		}
		sb.WriteString(fmt.Sprintf("UnknownFlags(0x%x)", uint32(unknown)))
	}

	return sb.String()
}
