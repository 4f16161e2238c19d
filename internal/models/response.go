package models

// Answer is a single submitted answer as returned by the LMS responses API.
type Answer struct {
	Answer string `json:"answer"`
}

// UserResponse is one user's full submission for one assessment. Answers are
// addressed 1-based by question number; positions beyond the slice are
// treated as unanswered.
type UserResponse struct {
	UserID  string   `json:"user_id" validate:"required"`
	Answers []Answer `json:"answers"`
}

// AnswerAt returns the answer at the given 1-based question number and
// whether one was submitted. Out-of-range lookups are a permissive miss,
// never an error: partial submissions are expected.
func (r *UserResponse) AnswerAt(questionNumber int) (string, bool) {
	if questionNumber < 1 || questionNumber > len(r.Answers) {
		return "", false
	}
	return r.Answers[questionNumber-1].Answer, true
}
