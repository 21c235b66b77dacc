package ingest

import "strings"

// Categorizer is the optional classification collaborator. It may label a
// subset of entries; an entry it cannot label keeps an empty category, which
// never blocks aggregation.
type Categorizer interface {
	Categorize(title string) (string, bool)
}

// Rule maps keywords to one category. Rules are applied in order; the first
// matching rule wins.
type Rule struct {
	Category string
	Keywords []string
}

// RuleCategorizer labels titles by keyword match.
type RuleCategorizer struct {
	rules []Rule
}

// NewRuleCategorizer creates a categorizer with the given ordered rules.
func NewRuleCategorizer(rules []Rule) *RuleCategorizer {
	return &RuleCategorizer{rules: rules}
}

// DefaultRules covers the platform's common categories with a small keyword
// seed list. It is deliberately conservative: an unmatched title stays
// uncategorized rather than guessing.
func DefaultRules() []Rule {
	return []Rule{
		{Category: "体育", Keywords: []string{"比赛", "夺冠", "奥运", "世界杯", "联赛", "球员", "国足"}},
		{Category: "科技", Keywords: []string{"芯片", "AI", "人工智能", "发布会", "手机", "航天", "卫星"}},
		{Category: "财经", Keywords: []string{"股市", "A股", "基金", "利率", "房价", "经济", "央行"}},
		{Category: "游戏", Keywords: []string{"游戏", "电竞", "主播", "新版本", "上线"}},
		{Category: "综艺", Keywords: []string{"综艺", "节目", "晚会", "春晚", "首播"}},
		{Category: "社会", Keywords: []string{"警方", "通报", "事故", "地震", "台风", "救援", "法院"}},
	}
}

// Categorize returns the first matching rule's category.
func (c *RuleCategorizer) Categorize(title string) (string, bool) {
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(title, kw) {
				return rule.Category, true
			}
		}
	}
	return "", false
}
