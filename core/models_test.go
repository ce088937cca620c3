package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "formatted transcript line", content: "[00:01:35] details"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestUserMemory_Contains(t *testing.T) {
	mem := &UserMemory{
		UserId: "u1",
		Items:  []string{"User prefers short bulleted notes", "User is a medical student"},
	}

	if !mem.Contains("User prefers short bulleted notes") {
		t.Error("Contains() = false for present item")
	}
	if mem.Contains("User prefers long essays") {
		t.Error("Contains() = true for absent item")
	}

	empty := &UserMemory{UserId: "u2"}
	if empty.Contains("anything") {
		t.Error("Contains() = true on empty set")
	}
}
