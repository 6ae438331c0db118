// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocklogger

import (
	"sync"
	"time"

	"github.com/tanglenet/tangled/domain/consensus/model/externalapi"
)

var stats = struct {
	sync.Mutex
	receivedLogBlocks       int64
	receivedLogTransactions int64
	receivedLogMilestones   int64
	lastBlockLogTime        time.Time
}{
	lastBlockLogTime: time.Now(),
}

// LogBlock counts a new block and logs the number of blocks, transactions
// and milestones received as an information message to show progress to the
// user. In order to prevent spam, it limits logging to one message every 10
// seconds with duration and totals included.
func LogBlock(block *externalapi.Block) {
	stats.Lock()
	defer stats.Unlock()

	stats.receivedLogBlocks++
	if _, ok := block.Transaction(); ok {
		stats.receivedLogTransactions++
	}
	if _, ok := block.Milestone(); ok {
		stats.receivedLogMilestones++
	}

	now := time.Now()
	duration := now.Sub(stats.lastBlockLogTime)
	if duration < time.Second*10 {
		return
	}

	// Truncate the duration to 10s of milliseconds.
	tDuration := duration.Round(10 * time.Millisecond)

	blockStr := "blocks"
	if stats.receivedLogBlocks == 1 {
		blockStr = "block"
	}
	txStr := "transactions"
	if stats.receivedLogTransactions == 1 {
		txStr = "transaction"
	}
	milestoneStr := "milestones"
	if stats.receivedLogMilestones == 1 {
		milestoneStr = "milestone"
	}
	log.Infof("Processed %d %s in the last %s (%d %s, %d %s)",
		stats.receivedLogBlocks, blockStr, tDuration, stats.receivedLogTransactions, txStr,
		stats.receivedLogMilestones, milestoneStr)

	stats.receivedLogBlocks = 0
	stats.receivedLogTransactions = 0
	stats.receivedLogMilestones = 0
	stats.lastBlockLogTime = now
}
