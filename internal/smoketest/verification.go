package smoketest

import (
	"context"
	"fmt"
	"strconv"
)

// verifyLeaderboard fetches the top n players and checks ordering, dense
// ranks and agreement with /api/rank for the leader.
func verifyLeaderboard(ctx context.Context, client *HTTPClient, n int, stats *Stats) error {
	var board []Entry
	if err := client.getJSON(ctx, "/api/leaderboard?limit="+strconv.Itoa(n), &board); err != nil {
		return err
	}
	stats.LeaderboardEntries = len(board)
	if err := checkOrdering(board); err != nil {
		return err
	}
	if len(board) == 0 {
		return nil
	}

	var top Entry
	if err := client.getJSON(ctx, playerQuery("/api/rank", board[0].Player), &top); err != nil {
		return err
	}
	if top.Rank != 1 {
		return fmt.Errorf("leader %q ranked %d", board[0].Player, top.Rank)
	}
	return nil
}

// checkOrdering verifies homeruns never increase down the board and ranks
// are dense: equal homeruns share a rank, the next distinct value adds one.
func checkOrdering(board []Entry) error {
	for i, e := range board {
		if i == 0 {
			if e.Rank != 1 {
				return fmt.Errorf("first entry has rank %d", e.Rank)
			}
			continue
		}
		prev := board[i-1]
		switch {
		case e.MaxHomeruns > prev.MaxHomeruns:
			return fmt.Errorf("entry %d (%s) outranks entry %d (%s)", i, e.Player, i-1, prev.Player)
		case e.MaxHomeruns == prev.MaxHomeruns && e.Rank != prev.Rank:
			return fmt.Errorf("tied entries %d and %d have ranks %d and %d", i-1, i, prev.Rank, e.Rank)
		case e.MaxHomeruns < prev.MaxHomeruns && e.Rank != prev.Rank+1:
			return fmt.Errorf("entry %d has rank %d after rank %d", i, e.Rank, prev.Rank)
		}
	}
	return nil
}
