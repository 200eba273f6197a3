package entity

import (
	"time"
)

type Stage string

const (
	StageMinting      Stage = "minting"
	StageTransferring Stage = "transferring"
	StageWithdrawing  Stage = "withdrawing"
	StageHarvesting   Stage = "harvesting"
	StageBurnGate     Stage = "burn_gate"
)

func (s Stage) String() string {
	return string(s)
}

type StageStatus string

const (
	StageStatusSucceeded StageStatus = "succeeded"

	// StageStatusSkipped is a successful no-op outcome (nothing to
	// withdraw/harvest/burn, insufficient balance, before burn window).
	// It is never an error.
	StageStatusSkipped StageStatus = "skipped"

	StageStatusFailed StageStatus = "failed"
)

func (s StageStatus) String() string {
	return string(s)
}

// StageOutcome is the per-stage result reported to the caller.
type StageOutcome struct {
	Stage       Stage       `json:"stage"`
	Status      StageStatus `json:"status"`
	Reason      string      `json:"reason,omitempty"`
	Amount      uint64      `json:"amount,omitempty"`
	Fee         uint64      `json:"fee,omitempty"`
	TxSignature string      `json:"txSignature,omitempty"`
}

type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// RunReport is the full record of one treasury run: which stages ran, what
// each produced, and the overall verdict. A failed stage halts the stages
// after it, but the outcomes gathered so far are always kept.
type RunReport struct {
	Id         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	Year       int
	Quarter    int
	Stages     []StageOutcome
}

// Failed reports whether any stage failed.
func (r *RunReport) Failed() bool {
	for _, stage := range r.Stages {
		if stage.Status == StageStatusFailed {
			return true
		}
	}
	return false
}
