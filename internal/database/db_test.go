package database

import "testing"

func TestDSN(t *testing.T) {
	cases := []struct {
		name string
		pass string
		want string
	}{
		{
			name: "with password",
			pass: "secret",
			want: "bot:secret@tcp(db:3306)/support?charset=utf8mb4&parseTime=true&loc=UTC",
		},
		{
			name: "passwordless keeps bare user",
			pass: "",
			want: "bot@tcp(db:3306)/support?charset=utf8mb4&parseTime=true&loc=UTC",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := dsn("bot", tc.pass, "db", "3306", "support"); got != tc.want {
				t.Errorf("dsn = %q, want %q", got, tc.want)
			}
		})
	}
}
