package models

import (
	"errors"
	"fmt"
)

// Work-order lifecycle statuses. The vocabulary used by the live API
// surface is canonical; every write path must go through Transition.
const (
	StatusNotStarted = "未进行"
	StatusPending    = "待确认"
	StatusConfirmed  = "已确认"
	StatusDone       = "已完成"
	StatusCancelled  = "已取消"
	StatusReturned   = "已退回"
)

// Plan types carried on work_plans.plan_type, discriminating which
// source table a mirror row belongs to.
const (
	PlanTypeInspection  = "定期巡检"
	PlanTypeRepair      = "临时维修"
	PlanTypeSpotWork    = "零星用工"
	PlanTypeMaintenance = "维保计划"
)

// Business-key prefixes per order type.
const (
	PrefixInspection  = "XJ"
	PrefixRepair      = "WX"
	PrefixSpotWork    = "LX"
	PrefixMaintenance = "WB"
)

// PrefixFor maps a plan type to its business-key prefix.
func PrefixFor(planType string) (string, bool) {
	switch planType {
	case PlanTypeInspection:
		return PrefixInspection, true
	case PlanTypeRepair:
		return PrefixRepair, true
	case PlanTypeSpotWork:
		return PrefixSpotWork, true
	case PlanTypeMaintenance:
		return PrefixMaintenance, true
	}
	return "", false
}

var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the legal next statuses per current status.
// 已取消 and 已退回 are reachable from any non-terminal state;
// 已退回 → 待确认 is the resubmission edge. 已完成 and 已取消 are terminal.
var transitions = map[string][]string{
	StatusNotStarted: {StatusPending, StatusCancelled, StatusReturned},
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusReturned},
	StatusConfirmed:  {StatusDone, StatusCancelled, StatusReturned},
	StatusReturned:   {StatusPending, StatusCancelled},
	StatusDone:       {},
	StatusCancelled:  {},
}

// ValidStatus reports whether s belongs to the canonical vocabulary.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminalStatus reports whether no further transition leaves s.
func IsTerminalStatus(s string) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CheckTransition validates a status change. A same-status write is
// always allowed (updates that do not touch status pass through).
func CheckTransition(from, to string) error {
	if !ValidStatus(to) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if from == "" {
		// newly created rows may start anywhere in the vocabulary
		return nil
	}
	if !ValidStatus(from) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	if from == to {
		return nil
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}

// CompletionStatus reports whether entering s stamps the actual
// completion date (idempotent at the caller).
func CompletionStatus(s string) bool {
	return s == StatusConfirmed || s == StatusDone
}
