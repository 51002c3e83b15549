// Package clipboard places finished reports on the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"
)

// Copier places report text on the system clipboard.
type Copier interface {
	Copy(reportText string) error
}

// Service is the atotto-backed Copier behind the copy option.
type Service struct{}

// NewService constructs the system clipboard service.
func NewService() *Service {
	return &Service{}
}

// Copy places reportText on the system clipboard.
func (service *Service) Copy(reportText string) error {
	return clipboard.WriteAll(reportText)
}

var _ Copier = (*Service)(nil)
