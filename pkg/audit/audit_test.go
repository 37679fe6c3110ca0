package audit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/perimetra/ztcore/pkg/model"
)

func testDecision(decision model.Decision) model.AccessDecision {
	return model.AccessDecision{
		ID:         "dec-1",
		EntityID:   "alice",
		ResourceID: "doc-1",
		Operation:  "read",
		Decision:   decision,
		Trust:      model.TrustScore{Score: 70},
		Risk:       model.RiskAssessment{Score: 10, Level: model.RiskLevelLow},
		Audit:      model.DecisionAudit{Reasons: []string{"trust score 70 with low risk"}},
	}
}

func TestLoggerRFC5424Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	logger.Log(DecisionEvent{Decision: testDecision(model.DecisionDeny), ClientIP: "10.0.0.7"})

	line := buf.String()

	// PRI for authpriv (10) at warning (4) is 84.
	if !strings.HasPrefix(line, "<84>1 ") {
		t.Errorf("expected line to start with <84>1, got %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("expected line to end with newline")
	}
	for _, want := range []string{
		" access ",
		`[` + SDIDActor,
		`user="alice"`,
		`ip="10.0.0.7"`,
		`resource_id="doc-1"`,
		`outcome="deny"`,
		"deny read on doc-1 for alice",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("expected line to contain %q, got %q", want, line)
		}
	}
}

func TestLoggerEmptyStructuredData(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	logger.Log(emptySDEvent{})

	fields := strings.Fields(buf.String())
	// <PRI>VERSION TIMESTAMP HOSTNAME APP-NAME PROCID MSGID SD MSG
	if len(fields) < 8 {
		t.Fatalf("expected at least 8 fields, got %d: %q", len(fields), buf.String())
	}
	if fields[6] != "-" {
		t.Errorf("expected nil SD placeholder -, got %q", fields[6])
	}
}

type emptySDEvent struct{}

func (emptySDEvent) MessageID() string { return "test" }

func (emptySDEvent) Message() string { return "test message" }

func (emptySDEvent) Severity() Severity { return SeverityInfo }

func (emptySDEvent) Facility() int { return FacilityAuth }

func (emptySDEvent) StructuredData() map[string]map[string]string { return nil }

func TestDecisionEventSeverity(t *testing.T) {
	tests := []struct {
		decision model.Decision
		want     Severity
	}{
		{model.DecisionAllow, SeverityInfo},
		{model.DecisionConditional, SeverityNotice},
		{model.DecisionChallenge, SeverityNotice},
		{model.DecisionDeny, SeverityWarning},
	}

	for _, tt := range tests {
		event := DecisionEvent{Decision: testDecision(tt.decision)}
		if got := event.Severity(); got != tt.want {
			t.Errorf("severity for %s: got %d, want %d", tt.decision, got, tt.want)
		}
	}
}

func TestVerificationEventSeverity(t *testing.T) {
	tests := []struct {
		name      string
		anomalies []model.Anomaly
		want      Severity
	}{
		{"clean cycle", nil, SeverityInfo},
		{"medium anomaly", []model.Anomaly{{Severity: model.RiskLevelMedium}}, SeverityNotice},
		{"high anomaly", []model.Anomaly{{Severity: model.RiskLevelHigh}}, SeverityWarning},
		{"critical anomaly", []model.Anomaly{{Severity: model.RiskLevelCritical}}, SeverityCritical},
		{
			"critical wins over high",
			[]model.Anomaly{{Severity: model.RiskLevelHigh}, {Severity: model.RiskLevelCritical}},
			SeverityCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := VerificationEvent{Result: model.VerificationResult{EntityID: "alice", Anomalies: tt.anomalies}}
			if got := event.Severity(); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVerificationEventCompliance(t *testing.T) {
	event := VerificationEvent{Result: model.VerificationResult{
		EntityID:   "alice",
		Compliance: model.ComplianceStatus{Violated: []string{"device-compliance"}},
	}}

	sd := event.StructuredData()
	if sd[SDIDAction]["outcome"] != "noncompliant" {
		t.Errorf("expected noncompliant outcome, got %q", sd[SDIDAction]["outcome"])
	}
	if sd[SDIDCompliance]["violations"] != "device-compliance" {
		t.Errorf("expected violation list, got %q", sd[SDIDCompliance]["violations"])
	}
}

func TestSegmentEvent(t *testing.T) {
	event := SegmentEvent{
		Segment: model.MicroSegment{ID: "seg-1", Name: "db-tier", Type: model.SegmentNetwork},
		Actor:   "alice",
	}

	if event.Facility() != FacilityAuth {
		t.Errorf("expected auth facility, got %d", event.Facility())
	}
	if !strings.Contains(event.Message(), `"db-tier"`) {
		t.Errorf("expected segment name in message, got %q", event.Message())
	}
	sd := event.StructuredData()
	if sd[SDIDActor]["user"] != "alice" {
		t.Errorf("expected actor alice, got %q", sd[SDIDActor]["user"])
	}
	if sd[SDIDTarget]["resource_id"] != "seg-1" {
		t.Errorf("expected segment id, got %q", sd[SDIDTarget]["resource_id"])
	}
}

func TestPolicyLoadEvent(t *testing.T) {
	event := PolicyLoadEvent{Source: "policies.yml", Count: 4}

	if got := event.Message(); got != "loaded 4 policies from policies.yml" {
		t.Errorf("unexpected message %q", got)
	}
	sd := event.StructuredData()
	if _, ok := sd[SDIDActor]; ok {
		t.Error("expected no actor block without an actor")
	}
}

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", `"plain"`},
		{`quo"te`, `"quo\"te"`},
		{`back\slash`, `"back\\slash"`},
		{`brack]et`, `"brack\]et"`},
	}

	for _, tt := range tests {
		if got := escapeSDValue(tt.in); got != tt.want {
			t.Errorf("escapeSDValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
