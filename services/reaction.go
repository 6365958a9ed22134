package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"discord-check-notify/models"
)

// 既読確認に使うリアクション絵文字
const AckEmoji = "✅"

// 1回の照会で取得するリアクターの上限（これを超えるページングは扱わない）
const reactorFetchLimit = 100

// ErrMissingIdentifiers はリアクション照会に必要なIDがレコードに揃っていないことを表す
// データ不備なので再試行せず、スキャン側は処理済み扱いにする
var ErrMissingIdentifiers = errors.New("reaction check record is missing required identifiers")

// ErrPermanentFetchFailure は再試行しても解消しない照会失敗を表す
var ErrPermanentFetchFailure = errors.New("reaction fetch failed permanently")

// ReactionReport は1回のスキャンの処理結果
type ReactionReport struct {
	Processed int
	Reminded  int
}

// CheckAndRemind は1件の既読確認レコードについて未反応者を割り出してリマインドする
// 定期スキャンと「今すぐリマインド」の両方から呼ばれる共通処理で、is_sent はここでは触らない
// 戻り値はリマインドを実際に送信したかどうか
//
// リアクションが一度も付いていないメッセージの照会は404になるが、
// これはエラーではなく「全員未反応」として扱う
func CheckAndRemind(db *gorm.DB, discord DiscordClient, check *models.ReactionCheck) (bool, error) {
	if !check.HasRequiredIdentifiers() {
		log.Printf("reaction check record is missing ids (id: %s)", check.ID)
		return false, ErrMissingIdentifiers
	}

	var reacted []string
	result := discord.GetReactors(check.PostChannelID, check.MessageID, AckEmoji, reactorFetchLimit)
	switch result.Status {
	case ReactionFetchOK:
		reacted = result.UserIDs
	case ReactionFetchNoData:
		// まだ誰もリアクションしていない。全対象者が未反応として続行する
		log.Printf("no reaction data yet (message: %s)", check.MessageID)
	case ReactionFetchTransient:
		return false, fmt.Errorf("reactor fetch error (message: %s): %w", check.MessageID, result.Err)
	case ReactionFetchPermanent:
		log.Printf("reactor fetch failed permanently (message: %s): %v", check.MessageID, result.Err)
		return false, fmt.Errorf("%w: %v", ErrPermanentFetchFailure, result.Err)
	}

	nonReactors := difference(check.TargetUserList(), reacted)
	if len(nonReactors) == 0 {
		log.Printf("all targets reacted (message: %s)", check.MessageID)
		return false, nil
	}

	content := BuildReactionReminderContent(check, nonReactors)
	messageID, err := discord.PostMessage(check.ReminderChannelID, &discordgo.MessageSend{Content: content})
	if err != nil {
		// 通知の失敗はログに残すだけ。再試行による重複送信を避ける
		log.Printf("reaction reminder post error (id: %s): %v", check.ID, err)
		return false, nil
	}

	sent := models.SentReminder{
		ReactionCheckID: check.ID,
		MessageID:       messageID,
		ChannelID:       check.ReminderChannelID,
	}
	if err := db.Create(&sent).Error; err != nil {
		log.Printf("sent reminder record error (id: %s): %v", check.ID, err)
	}

	log.Printf("reaction reminder sent (id: %s, non reactors: %d)", check.ID, len(nonReactors))
	return true, nil
}

// RunReactionCheck は当日分の既読確認レコードをスキャンして処理する
// レコードは条件付きUPDATEで先にクレームし、一時的な失敗のときだけクレームを戻す
// ID不備や恒久的な失敗のレコードは、次回以降のスキャンを塞がないよう処理済みのままにする
func RunReactionCheck(db *gorm.DB, discord DiscordClient, asOf string) (ReactionReport, error) {
	var report ReactionReport

	var checks []models.ReactionCheck
	result := db.Where("reminder_date = ? AND is_sent = ?", asOf, false).Find(&checks)
	if result.Error != nil {
		return report, fmt.Errorf("reaction check scan error: %w", result.Error)
	}

	if len(checks) == 0 {
		log.Printf("no reaction check due on %s", asOf)
		return report, nil
	}

	for i := range checks {
		check := &checks[i]
		if !claimReactionCheck(db, check.ID) {
			continue
		}

		reminded, err := CheckAndRemind(db, discord, check)
		if err != nil && !errors.Is(err, ErrMissingIdentifiers) && !errors.Is(err, ErrPermanentFetchFailure) {
			log.Printf("reaction check deferred (id: %s): %v", check.ID, err)
			releaseReactionCheck(db, check.ID)
			continue
		}

		report.Processed++
		if reminded {
			report.Reminded++
		}
	}

	return report, nil
}

func claimReactionCheck(db *gorm.DB, id string) bool {
	result := db.Model(&models.ReactionCheck{}).
		Where("id = ? AND is_sent = ?", id, false).
		Update("is_sent", true)
	if result.Error != nil {
		log.Printf("reaction check claim error (id: %s): %v", id, result.Error)
		return false
	}
	return result.RowsAffected > 0
}

func releaseReactionCheck(db *gorm.DB, id string) {
	if err := db.Model(&models.ReactionCheck{}).
		Where("id = ?", id).
		Update("is_sent", false).Error; err != nil {
		log.Printf("reaction check release error (id: %s): %v", id, err)
	}
}

// difference は targets のうち reacted に含まれないものを元の順序のまま返す
func difference(targets, reacted []string) []string {
	reactedSet := make(map[string]bool, len(reacted))
	for _, id := range reacted {
		reactedSet[id] = true
	}

	remaining := make([]string, 0, len(targets))
	for _, id := range targets {
		if !reactedSet[id] {
			remaining = append(remaining, id)
		}
	}
	return remaining
}
