package model

import (
	"os"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/rushteam/eventrec/feature"
	"github.com/rushteam/eventrec/pkg/conv"
)

// LinearModel 是线性融合模型：score = Σ w[f] × x[f]。
//
// 没有偏置项，也不做 sigmoid：分数直接是各特征贡献之和，保留 4 位小数，
// 方便在解释文案里逐项对账。权重里没有的特征贡献为 0。
type LinearModel struct {
	Weights feature.Weights
}

func NewLinearModel(w feature.Weights) *LinearModel {
	return &LinearModel{Weights: w}
}

// LoadLinearModel 从 JSON 文件读取权重，格式与 learned_weights 表相同。
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w feature.Weights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &LinearModel{Weights: w}, nil
}

func (m *LinearModel) Name() string { return "linear" }

func (m *LinearModel) Predict(features map[string]float64) (float64, error) {
	score, _ := m.Explain(features)
	return score, nil
}

// Explain 返回分数和逐特征明细。明细先按 feature.Names 的固定顺序，
// 其余特征按名字排序追加在后面。
func (m *LinearModel) Explain(features map[string]float64) (float64, []Contribution) {
	total := 0.0
	out := make([]Contribution, 0, len(features))
	for _, name := range orderedFeatures(features) {
		v := features[name]
		w := m.Weights[name]
		c := v * w
		total += c
		out = append(out, Contribution{
			Feature:      name,
			Value:        conv.Round4(v),
			Weight:       conv.Round4(w),
			Contribution: conv.Round4(c),
		})
	}
	return conv.Round4(total), out
}

func orderedFeatures(features map[string]float64) []string {
	names := make([]string, 0, len(features))
	known := make(map[string]bool, len(feature.Names))
	for _, name := range feature.Names {
		known[name] = true
		if _, ok := features[name]; ok {
			names = append(names, name)
		}
	}
	var extra []string
	for name := range features {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

var _ Explainer = (*LinearModel)(nil)
