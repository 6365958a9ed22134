package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User はアプリ利用者とDiscordアカウントの連携情報を保持する
type User struct {
	ID              string `gorm:"primaryKey"` // フロントエンド側のUID
	Name            string
	PhotoURL        string
	DiscordID       string `gorm:"index"`
	DiscordUsername string
	AccessToken     string
	RefreshToken    string
	TokenExpiresAt  time.Time
	Teams           string // 所属チームID（カンマ区切り）
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// TeamList は所属チームIDをスライスに展開する
func (u *User) TeamList() []string {
	if u.Teams == "" {
		return []string{}
	}
	return strings.Split(u.Teams, ",")
}

// AddTeam はチームIDを所属リストに追加する（既に含まれていれば何もしない）
func (u *User) AddTeam(teamID string) {
	for _, id := range u.TeamList() {
		if id == teamID {
			return
		}
	}
	if u.Teams == "" {
		u.Teams = teamID
		return
	}
	u.Teams = u.Teams + "," + teamID
}
