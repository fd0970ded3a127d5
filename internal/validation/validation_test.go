package validation

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid address", "john@x.com", false},
		{"valid with plus", "john+tag@example.co.uk", false},
		{"empty", "", true},
		{"missing domain", "john@", true},
		{"missing at sign", "john.example.com", true},
		{"spaces", "john doe@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("Email(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"strong enough", "p@ssw0rd123", false},
		{"exactly 8 chars", "abcdefg1", false},
		{"empty", "", true},
		{"too short", "short1", true},
		{"contains common pattern", "mypassword99", true},
		{"contains qwerty", "xxqwertyxx", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("Password(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestPassword_BcryptLimit(t *testing.T) {
	// 73 bytes — one over the bcrypt truncation boundary
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'x'
	}
	if err := Password(string(long)); err == nil {
		t.Error("Password() should reject inputs longer than 72 bytes")
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"simple", "john", false},
		{"full charset", "john.doe+test@x_1-2", false},
		{"empty", "", true},
		{"spaces", "john doe", true},
		{"exclamation", "john!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Username(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("Username(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}
