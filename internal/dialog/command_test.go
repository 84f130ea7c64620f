package dialog

import "testing"

func TestParseCommand(t *testing.T) {
	cases := []struct {
		payload string
		want    Command
	}{
		{"start", Command{Kind: CmdStart}},
		{"back_to_main", Command{Kind: CmdStart}},
		{"cancel", Command{Kind: CmdCancel}},
		{"new_request", Command{Kind: CmdNewRequest}},
		{"my_requests", Command{Kind: CmdMyRequests}},
		{"queue_open", Command{Kind: CmdQueue, Queue: "open"}},
		{"queue_urgent", Command{Kind: CmdQueue, Queue: "urgent"}},
		{"queue_completed", Command{Kind: CmdQueue, Queue: "completed"}},
		{"queue_page_2", Command{Kind: CmdQueuePage, Page: 2}},
		{"detail_42", Command{Kind: CmdDetail, ID: 42}},
		{"complete_7", Command{Kind: CmdComplete, ID: 7}},
		{"message_user_123456", Command{Kind: CmdMessageUser, Chat: 123456}},
		{"agent_info_99", Command{Kind: CmdAgentInfo, Chat: 99}},
		{"delete_agent_99", Command{Kind: CmdDeleteAgent, Chat: 99}},
		{"manage_agents", Command{Kind: CmdManageAgents}},
		{"add_agent", Command{Kind: CmdAddAgent}},
		{"add_resident", Command{Kind: CmdAddResident}},
		{"delete_resident", Command{Kind: CmdDeleteResident}},
		{"change_role", Command{Kind: CmdChangeRole}},
		{"reports_menu", Command{Kind: CmdReportMenu}},
		{"report_7", Command{Kind: CmdReport, Period: "7"}},
		{"report_month", Command{Kind: CmdReport, Period: "month"}},

		// Malformed or unknown payloads collapse to CmdNone.
		{"", Command{}},
		{"detail_abc", Command{}},
		{"queue_page_x", Command{}},
		{"queue_bogus", Command{}},
		{"report_365", Command{}},
		{"droptables", Command{}},
	}
	for _, tc := range cases {
		if got := ParseCommand(tc.payload); got != tc.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tc.payload, got, tc.want)
		}
	}
}
