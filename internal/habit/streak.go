// Package habit は習慣管理のドメインロジックを提供する。
package habit

import (
	"time"

	"github.com/hitoshi/daybook/internal/localday"
	"github.com/hitoshi/daybook/internal/model"
)

// advanceStreak はローカル日dayの達成を受けてストリークを遷移させる。
// 同じ日の達成が既に記録されている場合は変更なしでfalseを返す。
//
// 遷移規則:
//   - 前回達成日の翌日の達成なら現在値を+1する
//   - それ以外（空白期間あり、または初回）なら現在値を1に戻す
//   - 最長値は常に現在値との最大をとる
func advanceStreak(streak model.Streak, day string, loc *time.Location) (model.Streak, bool) {
	if streak.LastCompletedDate != nil {
		lastDay := localday.Key(*streak.LastCompletedDate, loc)
		if lastDay == day {
			return streak, false
		}

		prev, err := localday.PrevDay(day)
		if err == nil && lastDay == prev {
			streak.Current++
		} else {
			streak.Current = 1
		}
	} else {
		streak.Current = 1
	}

	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
	return streak, true
}
