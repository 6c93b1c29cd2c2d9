package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Diagnosis - JSON 모드 진단 응답
type Diagnosis struct {
	RootCause           string `json:"root_cause"`
	SeverityScore       Score  `json:"severity_score"`
	SuggestedFixCommand string `json:"suggested_fix_command"`
	RiskAssessment      string `json:"risk_assessment"`
}

// Score - severity_score 값
// 숫자, 숫자 문자열("8", "7.5"), "8/10" 형태를 허용하고 해석 불가 값은 0
type Score int

func (s *Score) UnmarshalJSON(data []byte) error {
	*s = 0
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil
		}
		text = strings.TrimSpace(str)
		if before, _, ok := strings.Cut(text, "/"); ok {
			text = strings.TrimSpace(before)
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*s = Score(math.Round(math.Max(-1000, math.Min(1000, f))))
	return nil
}

// ActionKind - 자동 조치 분류 (우선순위 순)
type ActionKind string

const (
	ActionOnboarding  ActionKind = "onboarding"
	ActionDeviceCount ActionKind = "device_count"
	ActionLinux       ActionKind = "linux"
	ActionNone        ActionKind = "none"
)

// ActionResult - 조치 결과. Summary는 항상 사람이 읽을 수 있는 한 줄
type ActionResult struct {
	Kind    ActionKind
	Summary string
}

// Notification - 채팅 알림 내용
type Notification struct {
	AlertID   string
	Tenant    string
	Source    string
	Severity  string
	Message   string
	Diagnosis string
	Action    ActionResult
}
