package internal

import "time"

const (
	xpPerLevel      = 100
	attendanceBonus = 5

	dateLayout = "2006-01-02"
)

// levelFor maps lifetime experience to a level. Level N covers the experience
// range [ (N-1)*100, N*100 ).
func levelFor(experience int) int {
	return experience/xpPerLevel + 1
}

// applyQuestReward credits a completed quest worth pts. Points, experience and
// totalPoints move together; the level is recomputed from experience.
func applyQuestReward(u *User, pts int) {
	u.Points += pts
	u.Experience += pts
	u.TotalPoints += pts
	u.Level = levelFor(u.Experience)
}

// applyAttendance advances the daily streak for a login happening at now.
// The streak continues when the previous login was yesterday, otherwise it
// restarts at 1. Returns false when the user already checked in today.
func applyAttendance(u *User, now time.Time) bool {
	today := now.Format(dateLayout)
	if u.LastLogin == today {
		return false
	}
	if u.LastLogin == now.AddDate(0, 0, -1).Format(dateLayout) {
		u.Streak++
	} else {
		u.Streak = 1
	}
	u.Points += attendanceBonus
	u.TotalPoints += attendanceBonus
	u.LastLogin = today
	return true
}
