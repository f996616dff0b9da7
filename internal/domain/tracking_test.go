package domain

import (
	"strings"
	"testing"
)

func TestNeedQuestionValidate(t *testing.T) {
	tests := []struct {
		content string
		ok      bool
	}{
		{"", false},
		{"four", false},
		{"five!", true},
		{strings.Repeat("é", 140), true},
		{strings.Repeat("a", 141), false},
	}
	for _, tc := range tests {
		q := NeedQuestion{Content: tc.content}
		err := q.Validate()
		if (err == nil) != tc.ok {
			t.Errorf("Validate(%d runes) = %v, want ok=%v", len([]rune(tc.content)), err, tc.ok)
		}
	}
}

func TestNeedQuestionPatchApply(t *testing.T) {
	q := NeedQuestion{Stage: 1, SubStage: 2, Content: "original"}
	sub := 5
	NeedQuestionPatch{SubStage: &sub}.Apply(&q)
	if q.Stage != 1 || q.SubStage != 5 || q.Content != "original" {
		t.Errorf("Apply = %+v", q)
	}

	content := "changed"
	NeedQuestionPatch{Content: &content}.Apply(&q)
	if q.Content != "changed" || q.SubStage != 5 {
		t.Errorf("Apply = %+v", q)
	}
}

func TestTargetNamePatchApply(t *testing.T) {
	n := TargetName{Content: "Run", Positive: true}
	positive := false
	TargetNamePatch{Positive: &positive}.Apply(&n)
	if n.Positive || n.Content != "Run" {
		t.Errorf("Apply = %+v", n)
	}
}

func TestOwnerIDNilSafe(t *testing.T) {
	var e *Entry
	var m *Measurement
	var n *TargetName
	if e.OwnerID() != 0 || m.OwnerID() != 0 || n.OwnerID() != 0 {
		t.Error("nil rows must report owner 0")
	}
	if (&Measurement{UserID: 3}).OwnerID() != 3 {
		t.Error("measurement owner")
	}
	if (&NeedQuestion{ID: 4}).OwnerID() != 0 {
		t.Error("need questions have no owner")
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleFree.Valid() || !RoleAdmin.Valid() || Role("Root").Valid() {
		t.Error("Role.Valid")
	}
	var u *User
	if u.IsAdmin() {
		t.Error("nil user is not admin")
	}
}
