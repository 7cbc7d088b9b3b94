package feature

import (
	"math"
	"strings"
	"time"

	"github.com/rushteam/eventrec/pkg/conv"
)

// EarthRadiusKm 是 haversine 公式使用的地球半径。
const EarthRadiusKm = 6371.0

// DefaultMaxDistanceKm 超过该距离的活动距离分为 0。
const DefaultMaxDistanceKm = 80.0

// HaversineKm 计算两点间的大圆距离（公里）。
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceScore = 1 - km/maxKm（km < maxKm），否则 0。maxKm <= 0 时恒为 0。
func DistanceScore(userLat, userLon, eventLat, eventLon, maxKm float64) float64 {
	if maxKm <= 0 {
		return 0
	}
	km := HaversineKm(userLat, userLon, eventLat, eventLon)
	if km >= maxKm {
		return 0
	}
	return conv.Round4(1 - km/maxKm)
}

// InterestScore 是用户兴趣与活动分类的重合比例（大小写不敏感），分母为用户兴趣数。
func InterestScore(userInterests, eventCategories []string) float64 {
	user := lowerSet(userInterests)
	if len(user) == 0 {
		return 0
	}
	event := lowerSet(eventCategories)
	overlap := 0
	for k := range user {
		if _, ok := event[k]; ok {
			overlap++
		}
	}
	return conv.Round4(float64(overlap) / float64(len(user)))
}

func lowerSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToLower(v)] = struct{}{}
	}
	return out
}

// 活动开始时间支持的格式，无时区的按 UTC 处理。
var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseStartTime 解析 ISO-8601 开始时间。
// 不带时区的时间按 UTC 解析并正常计分，而不是当作无法比较、记 0 分。
func ParseStartTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimeScore = 1/(1+days)，days 为距开始的整天数（向下取整，已开始的记 0）。
// 无法解析的开始时间得 0。
func TimeScore(startTime string, now time.Time) float64 {
	start, ok := ParseStartTime(startTime)
	if !ok {
		return 0
	}
	days := int(math.Floor(start.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return conv.Round4(1 / float64(1+days))
}
