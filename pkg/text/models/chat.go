package models

import (
	"errors"
	"fmt"
	"time"
)

// Role of the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Chat is an ordered conversation history. Oldest message first.
type Chat struct {
	Created  time.Time `json:"created,omitempty"`
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role       Role   `json:"role"`
	Content    string `json:"content,omitempty"`
	Name       string `json:"name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// NewUserMessage is shorthand for a Message with role 'user'.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AddMessage appends msg to the end of the history.
func (c *Chat) AddMessage(msg Message) {
	c.Messages = append(c.Messages, msg)
}

func (c *Chat) Len() int {
	return len(c.Messages)
}

// FirstSystemMessage returns the first encountered Message with role 'system'
func (c *Chat) FirstSystemMessage() (Message, error) {
	for _, msg := range c.Messages {
		if msg.Role == RoleSystem {
			return msg, nil
		}
	}
	return Message{}, errors.New("failed to find any system message")
}

func (c *Chat) FirstUserMessage() (Message, error) {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			return msg, nil
		}
	}
	return Message{}, errors.New("failed to find any user message")
}

func (c *Chat) LastOfRole(role Role) (Message, int, error) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		msg := c.Messages[i]
		if msg.Role == role {
			return msg, i, nil
		}
	}
	return Message{}, -1, fmt.Errorf("failed to find any %v message", role)
}
