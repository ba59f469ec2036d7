// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks the liveness of the daemon loops.
package health

import (
	"sync"
	"time"
)

type Journal struct {
	Enabled   bool       `json:"enabled"`
	LastWrite *time.Time `json:"lastWrite"`
	LastError string     `json:"lastError,omitempty"`
}

type Rewards struct {
	LastRewardEpoch uint64 `json:"lastRewardEpoch"`
	CurrentEpoch    uint64 `json:"currentEpoch"`
	// CheckedAt is the last time the reward loop ran, nil when it is disabled.
	CheckedAt *time.Time `json:"checkedAt"`
}

type Status struct {
	Healthy bool     `json:"healthy"`
	Journal *Journal `json:"journal"`
	Rewards *Rewards `json:"rewards"`
}

type Health struct {
	lock sync.RWMutex

	journaling  bool
	lastJournal time.Time
	journalErr  error

	rewardsChecked  time.Time
	lastRewardEpoch uint64
	currentEpoch    uint64
}

func New() *Health {
	return &Health{}
}

// Journaled records the outcome of an event db write.
func (h *Health) Journaled(err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.journaling = true
	h.journalErr = err
	if err == nil {
		h.lastJournal = time.Now()
	}
}

// RewardChecked records the last paid epoch seen by the reward loop.
func (h *Health) RewardChecked(lastRewardEpoch, currentEpoch uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.rewardsChecked = time.Now()
	h.lastRewardEpoch = lastRewardEpoch
	h.currentEpoch = currentEpoch
}

// Status is unhealthy when the last journal write failed, or when the reward loop runs
// and the reward of the current epoch is still unpaid after maxRewardDelay.
func (h *Health) Status(maxRewardDelay time.Duration) *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{
		Healthy: true,
		Journal: &Journal{Enabled: h.journaling},
		Rewards: &Rewards{
			LastRewardEpoch: h.lastRewardEpoch,
			CurrentEpoch:    h.currentEpoch,
		},
	}
	if !h.lastJournal.IsZero() {
		lastJournal := h.lastJournal
		status.Journal.LastWrite = &lastJournal
	}
	if h.journalErr != nil {
		status.Journal.LastError = h.journalErr.Error()
		status.Healthy = false
	}
	if !h.rewardsChecked.IsZero() {
		checked := h.rewardsChecked
		status.Rewards.CheckedAt = &checked
		if h.lastRewardEpoch < h.currentEpoch || time.Since(checked) > maxRewardDelay {
			status.Healthy = false
		}
	}
	return status
}
