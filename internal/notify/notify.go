// Package notify collects the operator-visible messages of one refresh pass.
package notify

import "fmt"

type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notices is owned by a single pass and is not safe for concurrent use.
type Notices struct {
	items []Notice
}

func New() *Notices {
	return &Notices{items: make([]Notice, 0)}
}

func (n *Notices) Errorf(format string, args ...interface{}) {
	n.items = append(n.items, Notice{Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

func (n *Notices) Warnf(format string, args ...interface{}) {
	n.items = append(n.items, Notice{Level: LevelWarning, Message: fmt.Sprintf(format, args...)})
}

// List returns a copy of the collected notices in emission order.
func (n *Notices) List() []Notice {
	res := make([]Notice, len(n.items))
	copy(res, n.items)
	return res
}

// Errors counts notices at error level.
func (n *Notices) Errors() int {
	count := 0
	for _, item := range n.items {
		if item.Level == LevelError {
			count++
		}
	}
	return count
}
