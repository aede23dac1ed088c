package services

import (
	"popularchoice/models"
)

// The state machine: every host action validates its fields and the
// session's current phase before touching the session, so a rejected
// action always leaves the session exactly as it was.
//
// Phase flow: game-setup -> game-selection -> game-init -> game-control
// -> back to game-selection, looped once per round.

// RoundUpdate is the bulk merge the host pushes during live play to
// reflect revealed answers, strikes and running scores.
type RoundUpdate struct {
	TeamA         models.Team     `json:"team_a"`
	TeamB         models.Team     `json:"team_b"`
	Question      string          `json:"question"`
	Answers       []models.Answer `json:"answers"`
	RoundScore    int             `json:"round_score"`
	ActiveTeam    int             `json:"active_team"`
	Strikes       int             `json:"strikes"`
	StealEligible bool            `json:"steal_eligible"`
}

func phaseAllowed(phase models.Phase, allowed ...models.Phase) bool {
	for _, p := range allowed {
		if phase == p {
			return true
		}
	}
	return false
}

// applyConfigure sets the title and both teams and moves the session to
// the selection phase. Re-running it from selection refreshes the title
// and team names but keeps accumulated scores.
func applyConfigure(s *models.Session, title string, teamA, teamB models.Team) error {
	if !phaseAllowed(s.Phase, models.PhaseSetup, models.PhaseSelection) {
		return &PhaseError{Action: "configure", Phase: s.Phase}
	}
	if title == "" {
		return validationf("title is required")
	}
	if teamA.Name == "" || teamB.Name == "" {
		return validationf("both team names are required")
	}

	s.Title = title
	s.TeamA = models.Team{Name: teamA.Name, Score: s.TeamA.Score}
	s.TeamB = models.Team{Name: teamB.Name, Score: s.TeamB.Score}
	s.Phase = models.PhaseSelection
	return nil
}

// applyAddQuestion puts a question on the board and moves the session to
// the init phase. The countdown overlay, if any, is cleared.
func applyAddQuestion(s *models.Session, q models.Question) error {
	if !phaseAllowed(s.Phase, models.PhaseSelection) {
		return &PhaseError{Action: "add question", Phase: s.Phase}
	}
	if q.Text == "" {
		return validationf("question text is required")
	}
	if len(q.Answers) == 0 {
		return validationf("question must have at least one answer")
	}
	for i, a := range q.Answers {
		if a.Text == "" {
			return validationf("answer %d has empty text", i+1)
		}
		if a.Points < 0 {
			return validationf("answer %d has negative points", i+1)
		}
	}

	s.Question = q.Text
	s.Answers = append([]models.Answer{}, q.Answers...)
	s.Countdown = nil
	s.Phase = models.PhaseInit
	return nil
}

// applySetScores overwrites both team scores. Legal any time after setup.
func applySetScores(s *models.Session, scoreA, scoreB int) error {
	if s.Phase == models.PhaseSetup {
		return &PhaseError{Action: "set scores", Phase: s.Phase}
	}
	if scoreA < 0 || scoreB < 0 {
		return validationf("scores must be non-negative")
	}

	s.TeamA.Score = scoreA
	s.TeamB.Score = scoreB
	return nil
}

// applySetCountdown requests a countdown overlay on the boards. The value
// is pushed to clients, never scheduled server-side.
func applySetCountdown(s *models.Session, seconds int) error {
	if s.Phase == models.PhaseSetup {
		return &PhaseError{Action: "set countdown", Phase: s.Phase}
	}
	if seconds <= 0 {
		return validationf("countdown seconds must be positive")
	}

	s.Countdown = &seconds
	return nil
}

// applyStartControl hands the round to one team and moves the session to
// the control phase with a clean strike counter.
func applyStartControl(s *models.Session, activeTeam int) error {
	if !phaseAllowed(s.Phase, models.PhaseInit) {
		return &PhaseError{Action: "start control", Phase: s.Phase}
	}
	if activeTeam != 0 && activeTeam != 1 {
		return validationf("active team must be 0 or 1")
	}

	s.ActiveTeam = activeTeam
	s.Strikes = 0
	s.StealEligible = false
	s.Phase = models.PhaseControl
	return nil
}

// applyUpdateRound merges the full round state during live play. No phase
// change; only legal while a round is under host control.
func applyUpdateRound(s *models.Session, upd RoundUpdate) error {
	if !phaseAllowed(s.Phase, models.PhaseControl) {
		return &PhaseError{Action: "update round", Phase: s.Phase}
	}
	if upd.RoundScore < 0 {
		return validationf("round score must be non-negative")
	}
	if upd.Strikes < 0 {
		return validationf("strikes must be non-negative")
	}
	if upd.ActiveTeam != 0 && upd.ActiveTeam != 1 {
		return validationf("active team must be 0 or 1")
	}
	for i, a := range upd.Answers {
		if a.Points < 0 {
			return validationf("answer %d has negative points", i+1)
		}
	}

	s.TeamA = upd.TeamA
	s.TeamB = upd.TeamB
	s.Question = upd.Question
	s.Answers = append([]models.Answer{}, upd.Answers...)
	s.RoundScore = upd.RoundScore
	s.ActiveTeam = upd.ActiveTeam
	s.Strikes = upd.Strikes
	s.StealEligible = upd.StealEligible
	return nil
}

// applyEndRound archives the current round into the history, marks the
// question as used and resets the round-scoped fields. Team scores carry
// over untouched. Appending is deliberate: ending twice records twice.
func applyEndRound(s *models.Session) error {
	if !phaseAllowed(s.Phase, models.PhaseControl, models.PhaseSelection) {
		return &PhaseError{Action: "end round", Phase: s.Phase}
	}

	s.Rounds = append(s.Rounds, models.RoundRecord{
		TeamA:         s.TeamA,
		TeamB:         s.TeamB,
		Question:      s.Question,
		Answers:       append([]models.Answer{}, s.Answers...),
		RoundScore:    s.RoundScore,
		ActiveTeam:    s.ActiveTeam,
		Strikes:       s.Strikes,
		StealEligible: s.StealEligible,
	})
	s.UsedQuestions = append(s.UsedQuestions, s.Question)

	s.RoundScore = 0
	s.Strikes = 0
	s.StealEligible = false
	s.Phase = models.PhaseSelection
	return nil
}
