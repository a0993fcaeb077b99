package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedMessageType = errors.New("unsupported message type")
	ErrServiceNotFound        = errors.New("service not found")
	ErrNoReply                = errors.New("no reply produced")
	ErrDuplicateService       = errors.New("service already registered")
)

// ServiceNotFoundError is returned when no chat completion service could be
// resolved for ServiceID.
type ServiceNotFoundError struct {
	ServiceID string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("chat completion service not found with service_id: %v", e.ServiceID)
}

func (e *ServiceNotFoundError) Is(target error) bool {
	return target == ErrServiceNotFound
}
