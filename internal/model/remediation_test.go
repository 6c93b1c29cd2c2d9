package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosisSeverityScoreFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want Score
	}{
		{`8`, 8},
		{`7.6`, 8},
		{`"8"`, 8},
		{`" 6 "`, 6},
		{`"9/10"`, 9},
		{`"high"`, 0},
		{`null`, 0},
		{`true`, 0},
		{`{"value":3}`, 0},
		{`1e9`, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var d Diagnosis
			body := `{"root_cause":"Log growth","severity_score":` + tt.raw + `,"suggested_fix_command":"truncate -s 0 /var/log/app.log","risk_assessment":"Low"}`

			require.NoError(t, json.Unmarshal([]byte(body), &d))

			assert.Equal(t, tt.want, d.SeverityScore)
			assert.Equal(t, "Log growth", d.RootCause)
			assert.Equal(t, "truncate -s 0 /var/log/app.log", d.SuggestedFixCommand)
			assert.Equal(t, "Low", d.RiskAssessment)
		})
	}
}
