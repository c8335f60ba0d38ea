// apps/go-server/internal/game/round.go
//
// Pure round judging. No I/O, no randomness: callers decide what to do with
// the outcome (draw and append on continue, nothing otherwise).

package game

// Judge evaluates a single pick against the last revealed element.
//
//   - Empty sequence: the opening round, nothing to compare yet → continue.
//   - Pick differs from the last element → lose.
//   - Match with len(sequence) == maxLen → win.
//   - Match below the cap → continue.
func Judge(sequence []int, pick, maxLen int) Outcome {
	n := len(sequence)
	if n == 0 {
		return OutcomeContinue
	}
	if sequence[n-1] != pick {
		return OutcomeLose
	}
	return capped(n, maxLen)
}

// JudgeReplay evaluates a full replay of the sequence.
// Every stored element must be matched position by position; extra trailing
// picks are ignored and a short replay loses.
func JudgeReplay(sequence, picks []int, maxLen int) Outcome {
	if len(picks) < len(sequence) {
		return OutcomeLose
	}
	for i, want := range sequence {
		if picks[i] != want {
			return OutcomeLose
		}
	}
	if len(sequence) == 0 {
		return OutcomeContinue
	}
	return capped(len(sequence), maxLen)
}

func capped(n, maxLen int) Outcome {
	if n >= maxLen {
		return OutcomeWin
	}
	return OutcomeContinue
}
