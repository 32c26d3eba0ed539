package exam

// TickResult describes what one countdown second did to the attempt.
type TickResult struct {
	// Applied is false when the tick was ignored (untimed or finished).
	Applied  bool
	TimeLeft int
	// Advanced is set when the countdown hit zero and forced the next question.
	Advanced bool
	Finished bool
}

// Timed reports whether the current attempt runs a per-question countdown.
func (a *Attempt) Timed() bool {
	return a.diff.Timed()
}

// TimeLeft is the remaining seconds on the current question.
func (a *Attempt) TimeLeft() int {
	return a.state.TimeLeftSeconds
}

// Tick consumes one second of the current question. Reaching zero leaves the
// question with nothing banked and moves on; the unanswered question simply
// scores zero.
func (a *Attempt) Tick() TickResult {
	if a.state.IsFinished || !a.diff.Timed() {
		return TickResult{TimeLeft: a.state.TimeLeftSeconds, Finished: a.state.IsFinished}
	}
	if a.state.TimeLeftSeconds > 0 {
		a.state.TimeLeftSeconds--
	}
	if a.state.TimeLeftSeconds > 0 {
		return TickResult{Applied: true, TimeLeft: a.state.TimeLeftSeconds}
	}

	a.state.TimeLeftSeconds = 0
	finished := a.advance()
	return TickResult{
		Applied:  true,
		TimeLeft: a.state.TimeLeftSeconds,
		Advanced: true,
		Finished: finished,
	}
}

// enterQuestion arms the countdown for the current question.
func (a *Attempt) enterQuestion() {
	if !a.diff.Timed() {
		a.state.TimeLeftSeconds = 0
		a.state.BankedTimeSeconds = 0
		return
	}
	banked := 0
	if a.diff.TimeBanking {
		banked = a.state.BankedTimeSeconds
	}
	a.state.TimeLeftSeconds = a.diff.TimeLimitSeconds + banked
}

// leaveQuestion banks leftover time; only time-banking tiers keep it.
func (a *Attempt) leaveQuestion() {
	if a.diff.TimeBanking && a.state.TimeLeftSeconds > 0 {
		a.state.BankedTimeSeconds = a.state.TimeLeftSeconds
		return
	}
	a.state.BankedTimeSeconds = 0
}
