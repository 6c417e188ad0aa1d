package flashcard

// correctToMaster is the streak an under_review card needs to become mastered.
const correctToMaster = 2

// CalculateMasteryStatus returns the next (status, streak) pair for a card
// after one review. It is a pure function: the caller persists the result.
//
//	know:      streak+1; learning -> under_review;
//	           under_review -> mastered once the streak reaches 2.
//	dont_know: streak reset to 0; any status -> learning.
func CalculateMasteryStatus(performance ReviewOutcome, current MasteryStatus, consecutiveCorrect int) (MasteryStatus, int) {
	if performance == OutcomeDontKnow {
		return StatusLearning, 0
	}

	streak := consecutiveCorrect + 1
	switch current {
	case StatusLearning:
		return StatusUnderReview, streak
	case StatusUnderReview:
		if streak >= correctToMaster {
			return StatusMastered, streak
		}
	}
	return current, streak
}

// MasteryMessage returns the feedback shown to the user after a review.
func MasteryMessage(performance ReviewOutcome, newStatus MasteryStatus) string {
	if performance == OutcomeKnow {
		switch newStatus {
		case StatusUnderReview:
			return "Great job! One more correct answer to master this card."
		case StatusMastered:
			return "Excellent! You've mastered this card!"
		default:
			return "Good job! Keep it up."
		}
	}

	if newStatus == StatusLearning {
		return "No worries! This card is back in learning mode."
	}
	return "Keep going, practice makes perfect!"
}
