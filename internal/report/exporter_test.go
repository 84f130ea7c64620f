package report

import (
	"testing"

	"github.com/sunqar/zhk-support-bot/internal/model"
)

func TestRowLabelsAreLocalized(t *testing.T) {
	cases := []struct {
		status  model.TicketStatus
		urgency model.Urgency
		wantS   string
		wantU   string
	}{
		{model.TicketStatusOpen, model.UrgencyNormal, "Открыта", "Обыч"},
		{model.TicketStatusCompleted, model.UrgencyUrgent, "Завершена", "Сроч"},
	}
	for _, tc := range cases {
		if got := statusLabel(tc.status); got != tc.wantS {
			t.Errorf("statusLabel(%s) = %q, want %q", tc.status, got, tc.wantS)
		}
		if got := urgencyLabel(tc.urgency); got != tc.wantU {
			t.Errorf("urgencyLabel(%s) = %q, want %q", tc.urgency, got, tc.wantU)
		}
	}
}
