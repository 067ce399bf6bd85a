// Package daily は日単位のアクティビティビューを提供する。
//
// 各エンティティはUTCの絶対時刻で保存されているため、ビューの組み立て時に
// リクエストのタイムゾーンでローカル日キーへ再投影してグループ化する。
package daily

import (
	"time"

	"github.com/hitoshi/daybook/internal/localday"
)

// groupByDay は各要素をローカル日キーでグループ化する。
// atは要素からグループ化の基準となる絶対時刻を取り出す。
func groupByDay[T any](items []T, loc *time.Location, at func(T) time.Time) map[string][]T {
	grouped := make(map[string][]T)
	for _, item := range items {
		key := localday.Key(at(item), loc)
		grouped[key] = append(grouped[key], item)
	}
	return grouped
}
