package validate

import (
	"testing"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "echo a", false},
		{"with tabs", "printf 'a\tb'", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
		{"newline", "echo a\necho b", true},
		{"carriage return", "echo a\r", true},
		{"escape", "echo \x1b]633;D", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Command(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Command(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestPromptCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"default", "sleep 0.1", false},
		{"multi line", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PromptCommand(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("PromptCommand(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
