// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/thor"
)

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

func newEvents() []*staker.Event {
	var events []*staker.Event
	for i := range 10 {
		events = append(events, &staker.Event{
			Kind:   staker.EventStaked,
			Block:  uint64(i + 1),
			Time:   uint64(1000 + i*10),
			User:   alice,
			Amount: big.NewInt(int64(i + 1)),
			Shares: big.NewInt(int64(i + 1)),
			Total:  new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil),
		})
	}
	events = append(events,
		&staker.Event{Kind: staker.EventDelegated, Block: 11, Time: 1100, User: bob, Counterparty: alice, Shares: big.NewInt(7)},
		&staker.Event{Kind: staker.EventPaidReward, Block: 12, Time: 1110, Amount: big.NewInt(42), Epoch: 3},
		&staker.Event{Kind: staker.EventParameterUpdated, Block: 12, Time: 1110, User: bob, Name: "minApr", Value: "1000000"},
	)
	return events
}

func TestInsertAndFilter(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, newEvents()...))
	require.NoError(t, db.Insert(ctx))

	all, err := db.Filter(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 13)
	for i, e := range all {
		assert.Equal(t, uint64(i+1), e.Seq)
	}
	assert.Equal(t, "1000000000000000000000000000000", all[0].Total.String())
	assert.True(t, all[10].Amount == nil, "absent amounts stay nil")

	tests := []struct {
		name   string
		filter *Filter
		seqs   []uint64
	}{
		{
			name:   "block range",
			filter: &Filter{Range: &Range{Unit: Block, From: 3, To: 5}},
			seqs:   []uint64{3, 4, 5},
		},
		{
			name:   "open ended time range",
			filter: &Filter{Range: &Range{Unit: Time, From: 1100}},
			seqs:   []uint64{11, 12, 13},
		},
		{
			name:   "address as counterparty",
			filter: &Filter{Address: &alice, Kinds: []staker.EventKind{staker.EventDelegated}},
			seqs:   []uint64{11},
		},
		{
			name:   "address as user or counterparty",
			filter: &Filter{Address: &bob},
			seqs:   []uint64{11, 13},
		},
		{
			name:   "kinds",
			filter: &Filter{Kinds: []staker.EventKind{staker.EventPaidReward, staker.EventParameterUpdated}},
			seqs:   []uint64{12, 13},
		},
		{
			name:   "descending page",
			filter: &Filter{Order: DESC, Options: &Options{Offset: 1, Limit: 2}},
			seqs:   []uint64{12, 11},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := db.Filter(ctx, tt.filter)
			require.NoError(t, err)
			seqs := make([]uint64, 0, len(entries))
			for _, e := range entries {
				seqs = append(seqs, e.Seq)
			}
			assert.Equal(t, tt.seqs, seqs)
		})
	}

	reward, err := db.Filter(ctx, &Filter{Kinds: []staker.EventKind{staker.EventPaidReward}})
	require.NoError(t, err)
	require.Len(t, reward, 1)
	assert.Equal(t, uint64(3), reward[0].Epoch)
	assert.Equal(t, "42", reward[0].Amount.String())
	assert.True(t, reward[0].User.IsZero())

	last, err := db.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(13), last.Seq)
	assert.Equal(t, "minApr", last.Name)
	assert.Equal(t, "1000000", last.Value)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	db, err := New(path)
	require.NoError(t, err)
	last, err := db.Last(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
	require.NoError(t, db.Insert(ctx, newEvents()[:2]...))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())

	require.NoError(t, db.Insert(ctx, newEvents()[2]))
	all, err := db.Filter(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(3), all[2].Block)
}

func TestCanceledContext(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, db.Insert(ctx, newEvents()...))
}
