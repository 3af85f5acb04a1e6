package session

import (
	"fmt"
	"os"
	"sort"
)

// WriteLeaderboard snapshots the registry's active sessions, sorts them by
// descending points (ascending id tie-break), truncates to topN, and writes
// them to path (spec.md §4.8). Invoked only from the dispatcher when the
// operator signal fires (§4.9/§4.10).
func WriteLeaderboard(reg *Registry, path string, topN int) error {
	snapshot := reg.ActiveSnapshot()

	sort.Slice(snapshot, func(i, j int) bool {
		pi, pj := snapshot[i].Points(), snapshot[j].Points()
		if pi != pj {
			return pi > pj
		}
		return snapshot[i].ID < snapshot[j].ID
	})

	if topN > 0 && len(snapshot) > topN {
		snapshot = snapshot[:topN]
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening leaderboard file %s: %w", path, err)
	}
	defer f.Close()

	for _, s := range snapshot {
		if _, err := fmt.Fprintf(f, "ID: %d, Pontos: %d\n", s.ID, s.Points()); err != nil {
			return fmt.Errorf("writing leaderboard file %s: %w", path, err)
		}
	}
	return nil
}
