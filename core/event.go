package core

// Event 是请求中的一个候选活动。
// HostScore / TrustScore 由调用方给出，原样作为特征使用，不做范围校验。
type Event struct {
	EventID    string
	Latitude   float64
	Longitude  float64
	Categories []string

	// StartTime 是 ISO-8601 字符串，解析失败时时间特征为 0
	StartTime string

	HostScore  float64
	TrustScore float64
}
