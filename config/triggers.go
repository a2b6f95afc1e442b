package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TriggersConfig captures the keyword vocabularies and patterns used by the
// heuristic extraction engine. The fields can be customized via config.yaml
// (JSON is also accepted because it is a subset of YAML 1.2).
type TriggersConfig struct {
	DecisionTriggers []string `json:"decision_triggers" yaml:"decision_triggers"`
	ActionTriggers   []string `json:"action_triggers" yaml:"action_triggers"`
	RiskTriggers     []string `json:"risk_triggers" yaml:"risk_triggers"`
	Stopwords        []string `json:"stopwords" yaml:"stopwords"`
	AssigneePatterns []string `json:"assignee_patterns" yaml:"assignee_patterns"`
	DuePatterns      []string `json:"due_patterns" yaml:"due_patterns"`
	Unspecified      string   `json:"unspecified" yaml:"unspecified"`
}

// DefaultTriggersConfig returns the baked-in Thai meeting vocabularies.
func DefaultTriggersConfig() TriggersConfig {
	return TriggersConfig{
		DecisionTriggers: []string{
			"ตัดสินใจ", "อนุมัติ", "ยืนยัน", "สรุปว่า", "ข้อสรุป", "ตกลงว่า",
		},
		ActionTriggers: []string{
			"มอบหมาย", "รับผิดชอบ", "ต้องทำ", "จะทำ", "ดำเนินการ",
			"ภายใน", "ก่อน", "ส่ง", "ติดตาม", "เดดไลน์", "กำหนดส่ง",
		},
		RiskTriggers: []string{
			"ความเสี่ยง", "เสี่ยง", "ปัญหา", "ติดขัด", "ค้าง",
			"ยังไม่เสร็จ", "รอ", "อาจ", "ขึ้นอยู่กับ", "บล็อค",
		},
		Stopwords: []string{
			"ครับ", "ค่ะ", "คะ", "เรา", "เขา", "ที่", "ว่า", "และ",
			"หรือ", "ก็", "คือ", "มัน", "ได้", "ๆ", "นะ", "เอ่อ",
			"อ่า", "แบบว่า", "คือว่า", "ก็คือ", "แบบ",
		},
		AssigneePatterns: []string{
			`(คุณ[^\s]+)`,
			`(พี่[^\s]+)`,
			`(นาย[^\s]+)`,
			`(นาง[^\s]+)`,
			`(นางสาว[^\s]+)`,
		},
		DuePatterns: []string{
			`(ภายใน\s*\d+\s*(วัน|สัปดาห์|เดือน))`,
			`(ก่อน\s*วันที่\s*\d{1,2}/\d{1,2}/\d{2,4})`,
			`(ภายใน\s*สัปดาห์นี้|ภายใน\s*เดือนนี้|สิ้นเดือนนี้|สัปดาห์หน้า|เดือนหน้า)`,
		},
		Unspecified: "ไม่ระบุ",
	}
}

// LoadTriggersConfig reads YAML/JSON and merges it with defaults.
func LoadTriggersConfig(path string) (TriggersConfig, error) {
	cfg := DefaultTriggersConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("empty config file")
	}
	var parsed struct {
		Triggers TriggersConfig `json:"triggers" yaml:"triggers"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &parsed); err != nil {
			return cfg, err
		}
	default:
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return cfg, err
		}
	}
	return MergeTriggersConfig(cfg, parsed.Triggers), nil
}

// MergeTriggersConfig overlays non-empty fields onto the base config.
func MergeTriggersConfig(base TriggersConfig, override TriggersConfig) TriggersConfig {
	if len(override.DecisionTriggers) > 0 {
		base.DecisionTriggers = append([]string{}, override.DecisionTriggers...)
	}
	if len(override.ActionTriggers) > 0 {
		base.ActionTriggers = append([]string{}, override.ActionTriggers...)
	}
	if len(override.RiskTriggers) > 0 {
		base.RiskTriggers = append([]string{}, override.RiskTriggers...)
	}
	if len(override.Stopwords) > 0 {
		base.Stopwords = append([]string{}, override.Stopwords...)
	}
	if len(override.AssigneePatterns) > 0 {
		base.AssigneePatterns = append([]string{}, override.AssigneePatterns...)
	}
	if len(override.DuePatterns) > 0 {
		base.DuePatterns = append([]string{}, override.DuePatterns...)
	}
	if strings.TrimSpace(override.Unspecified) != "" {
		base.Unspecified = strings.TrimSpace(override.Unspecified)
	}
	return base
}
