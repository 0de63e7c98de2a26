package ledger

import (
	"fmt"
	"strings"

	"loan-ledger/internal/pkg/consts"
)

type Status string

const (
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusOutstanding         Status = "outstanding"
	StatusRepaid              Status = "repaid"

	// LegacyStatusPaid is still found in older documents. It is only read, never written.
	LegacyStatusPaid = "paid"
)

// ParseStatus maps a stored status onto the enum, folding "paid" into repaid.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(StatusPendingConfirmation):
		return StatusPendingConfirmation, nil
	case string(StatusOutstanding):
		return StatusOutstanding, nil
	case string(StatusRepaid), LegacyStatusPaid:
		return StatusRepaid, nil
	default:
		return "", fmt.Errorf("%w: unknown loan status %q", consts.ErrorInvalidRequest, raw)
	}
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsSettled() bool {
	return s == StatusRepaid
}
