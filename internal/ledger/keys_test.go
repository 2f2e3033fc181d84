package ledger

import "testing"

func TestEventKeys(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{PostCreateKey("p1"), "post:create:p1"},
		{PostDeleteKey("p1"), "post:delete:p1"},
		{LikeKey("p1", "u2", true), "like:p1:u2:like"},
		{LikeKey("p1", "u2", false), "like:p1:u2:unlike"},
		{CommentCreateKey("p1", "c9"), "comment:create:p1:c9"},
		{CommentDeleteKey("p1", "c9"), "comment:delete:p1:c9"},
		{AdminAdjustKey("u3", "req-1"), "admin:adjust:u3:req-1"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got key %q, want %q", tt.got, tt.want)
		}
	}
}
