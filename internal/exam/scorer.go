package exam

import "exam-session-service/internal/domain"

// Credit scores one question. An exact canonical match earns 1; a
// multi-id answer key earns the fraction of correct ids selected, with extra
// selections left unpenalised; anything else earns 0. Matching questions are
// re-derived from raw placements when they exist.
func Credit(q domain.PreparedQuestion, answer string, placed map[string]string) float64 {
	if q.Kind() == domain.KindMatching && placed != nil {
		answer = MatchedAnswer(q, placed)
	}
	user := domain.SplitAnswer(answer)
	if len(user) == 0 {
		return 0
	}
	correct := q.CorrectIDs()
	if domain.NormalizeAnswer(answer) == domain.NormalizeAnswer(q.CorrectAnswer) {
		return 1
	}
	if len(correct) < 2 {
		return 0
	}
	hits := 0
	for _, id := range user {
		if q.IsCorrectID(id) {
			hits++
		}
	}
	return float64(hits) / float64(len(correct))
}

// Score finalizes an answer sheet. The returned credits are in question
// order and sum to the score.
func Score(questions []domain.PreparedQuestion, answers map[int]string, placements map[int]map[string]string) (float64, []float64) {
	credits := make([]float64, len(questions))
	total := 0.0
	for i, q := range questions {
		credits[i] = Credit(q, answers[i], placements[i])
		total += credits[i]
	}
	return total, credits
}
