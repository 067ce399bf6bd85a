// Package localday はローカル暦日とUTC絶対時刻の相互変換を提供する。
//
// 「ローカル日」はタイムゾーンに対して解釈される暦日であり、同一瞬間の
// UTC日付とは一致しないことがある。リポジトリ層・集計層のタイムゾーン計算は
// すべて本パッケージを経由し、オフセットの再計算を各所で行わない。
package localday

import (
	"fmt"
	"time"
)

// KeyFormat は日キー（YYYY-MM-DD）のレイアウト。
// 辞書順がそのまま時系列順になる。
const KeyFormat = "2006-01-02"

// Location はIANAタイムゾーン識別子をtime.Locationに解決する。
// 空文字列または未知の識別子はエラーにせずUTCへ静かにフォールバックする。
// クライアント申告値をそのまま受けるための意図的なトレードオフ。
func Location(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseDay はYYYY-MM-DD形式の暦日文字列を検証してパースする。
// 返る時刻の時分秒には意味がない（UTC深夜0時）。
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(KeyFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("暦日のパースに失敗しました: %w", err)
	}
	return t, nil
}

// Bounds はローカル日範囲に対応するUTC絶対時刻の境界を表す。
// StartUTCは初日のローカル00:00:00.000、EndUTCは末日のローカル23:59:59.999。
type Bounds struct {
	StartUTC time.Time
	EndUTC   time.Time
}

// BoundsForDay は単一のローカル日をUTC境界に変換する。
func BoundsForDay(day string, loc *time.Location) (Bounds, error) {
	return BoundsForRange(day, day, loc)
}

// BoundsForRange はローカル日の閉区間[startDay, endDay]をUTC境界に変換する。
// time.Dateでローカル深夜0時に固定するため、夏時間の切り替わりで
// 1日が23時間や25時間になっても正しい境界を返す。
func BoundsForRange(startDay, endDay string, loc *time.Location) (Bounds, error) {
	start, err := ParseDay(startDay)
	if err != nil {
		return Bounds{}, err
	}
	end, err := ParseDay(endDay)
	if err != nil {
		return Bounds{}, err
	}
	if end.Before(start) {
		return Bounds{}, fmt.Errorf("終了日 %s が開始日 %s より前です", endDay, startDay)
	}

	startLocal := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	endLocal := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999_000_000, loc)

	return Bounds{
		StartUTC: startLocal.UTC(),
		EndUTC:   endLocal.UTC(),
	}, nil
}

// Key は絶対時刻をlocで解釈したローカル暦日キー（YYYY-MM-DD）に変換する。
// 保存されたUTC値から直接日付を切り出してはならない。必ず本関数を使う。
func Key(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(KeyFormat)
}

// Midnight は指定ローカル日の深夜0時を表す絶対時刻を返す。
// 習慣の達成記録の正規化日付として使用する。
func Midnight(day string, loc *time.Location) (time.Time, error) {
	d, err := ParseDay(day)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), nil
}

// Today は現在時刻nowをlocで解釈したローカル暦日キーを返す。
func Today(now time.Time, loc *time.Location) string {
	return Key(now, loc)
}

// PrevDay は日キーの前日の日キーを返す。
// 連続達成（ストリーク）判定に使用する。
func PrevDay(day string) (string, error) {
	d, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, -1).Format(KeyFormat), nil
}
