package dto

import (
	"time"

	"whitegate/internal/domain"
)

type ConnectionInfo struct {
	Address   string    `json:"ip"`
	Outcome   string    `json:"status"`
	Protocol  string    `json:"protocol"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
}

func NewConnectionInfo(event domain.ConnectionEvent) ConnectionInfo {
	return ConnectionInfo{
		Address:   event.Address,
		Outcome:   event.Outcome,
		Protocol:  event.Protocol,
		Location:  event.Location,
		Timestamp: event.Timestamp,
	}
}

type BlockedIPInfo struct {
	Address      string    `json:"ip"`
	AttemptCount int64     `json:"attempt_count"`
	Location     string    `json:"location"`
	FirstAttempt time.Time `json:"first_attempt"`
	LastAttempt  time.Time `json:"last_attempt"`
}

func NewBlockedIPInfo(stat domain.BlockedIPStat) BlockedIPInfo {
	return BlockedIPInfo{
		Address:      stat.Address,
		AttemptCount: stat.AttemptCount,
		Location:     stat.Location,
		FirstAttempt: stat.FirstAttempt,
		LastAttempt:  stat.LastAttempt,
	}
}

type OperationLogInfo struct {
	User          string    `json:"user"`
	Action        string    `json:"action"`
	Target        string    `json:"target"`
	Details       string    `json:"details"`
	SourceAddress string    `json:"ip_address"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewOperationLogInfo(entry domain.OperationLog) OperationLogInfo {
	return OperationLogInfo{
		User:          entry.User,
		Action:        entry.Action,
		Target:        entry.Target,
		Details:       entry.Details,
		SourceAddress: entry.SourceAddress,
		Timestamp:     entry.Timestamp,
	}
}
