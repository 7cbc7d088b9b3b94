package recommend

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/rushteam/eventrec/model"
)

// Explain 把逐特征明细转成可读文案，只保留贡献为正的特征，顺序与明细一致：
//
//	Distance contributed 0.27
func Explain(breakdown []model.Contribution) []string {
	out := make([]string, 0, len(breakdown))
	for _, c := range breakdown {
		if c.Contribution <= 0 {
			continue
		}
		out = append(out, featureTitle(c.Feature)+" contributed "+strconv.FormatFloat(c.Contribution, 'f', -1, 64))
	}
	return out
}

// Debug 把明细转成按特征名索引的 map。
func Debug(breakdown []model.Contribution) map[string]model.Contribution {
	out := make(map[string]model.Contribution, len(breakdown))
	for _, c := range breakdown {
		out[c.Feature] = c
	}
	return out
}

// featureTitle: "host_score" -> "Host Score"
func featureTitle(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
