package recommend

import (
	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/model"
)

// Request 是一次推荐请求：一个用户和若干候选活动。
type Request struct {
	User   User    `json:"user"`
	Events []Event `json:"events"`
}

type User struct {
	UserID          string   `json:"user_id"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	Interests       []string `json:"interests"`
	EngagementScore float64  `json:"engagement_score"`
}

type Event struct {
	EventID   string   `json:"event_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Category  []string `json:"category"`
	StartTime string   `json:"start_time"`

	// 调用方给出的信号，缺省为 0
	HostScore  float64 `json:"host_score"`
	TrustScore float64 `json:"trust_score"`
}

// Response 按最终顺序返回打分后的活动。
type Response struct {
	Results []ScoredEvent `json:"results"`
}

// ScoredEvent 是单个活动的结果。Explanation 与 Debug 只在开启解释时输出。
type ScoredEvent struct {
	EventID     string                        `json:"event_id"`
	Score       float64                       `json:"score"`
	Explanation []string                      `json:"explanation,omitempty"`
	Debug       map[string]model.Contribution `json:"debug,omitempty"`
}

func (u User) profile() *core.UserProfile {
	p := core.NewUserProfile(u.UserID)
	p.Latitude = u.Latitude
	p.Longitude = u.Longitude
	if u.Interests != nil {
		p.Interests = u.Interests
	}
	p.EngagementScore = u.EngagementScore
	return p
}

func (e Event) event() core.Event {
	return core.Event{
		EventID:    e.EventID,
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		Categories: e.Category,
		StartTime:  e.StartTime,
		HostScore:  e.HostScore,
		TrustScore: e.TrustScore,
	}
}
