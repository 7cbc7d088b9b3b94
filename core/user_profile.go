package core

// UserProfile 是请求时的用户画像。
//
// 字段全部来自调用方（传输层之外），本模块不做校验：
//   - 位置：用于距离特征
//   - 兴趣标签：用于兴趣重合度特征
//   - EngagementScore：调用方给出的活跃度，直接作为 engagement 特征
//
// 注意：离线任务同样会产出 engagement 表，但请求路径不读取它，
// 两条路径保持独立。
type UserProfile struct {
	UserID string

	Latitude  float64
	Longitude float64

	// 兴趣标签，大小写不敏感
	Interests []string

	EngagementScore float64
}

// NewUserProfile 创建一个新的用户画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:    userID,
		Interests: make([]string, 0),
	}
}
