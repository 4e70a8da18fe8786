package builder

import "testing"

func TestSessionClone(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		wantNil bool
	}{
		{name: "nil lists stay nil", session: &Session{}, wantNil: true},
		{
			name: "empty lists stay empty",
			session: &Session{
				LLMContext: []string{},
				Messages:   []ChatMessage{},
				Steps:      []SessionStep{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.session.Clone()
			if (got.LLMContext == nil) != tt.wantNil || (got.Messages == nil) != tt.wantNil || (got.Steps == nil) != tt.wantNil {
				t.Errorf("Clone() nil-ness = context %v, messages %v, steps %v; want nil %v",
					got.LLMContext == nil, got.Messages == nil, got.Steps == nil, tt.wantNil)
			}
		})
	}
}

func TestSessionClone_DoesNotAlias(t *testing.T) {
	original := &Session{
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
		Steps:    []SessionStep{{Batch: 1}},
	}

	clone := original.Clone()
	clone.Messages[0].Content = "changed"
	clone.Steps[0].Batch = 9

	if original.Messages[0].Content != "hi" || original.Steps[0].Batch != 1 {
		t.Errorf("Clone() aliased the original: %+v", original)
	}
}
