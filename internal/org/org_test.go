package org

import "testing"

func TestOrg_Validate(t *testing.T) {
	tests := []struct {
		name    string
		org     Org
		wantErr bool
	}{
		{
			name: "alias only",
			org:  Org{Alias: "prod"},
		},
		{
			name: "username only",
			org:  Org{Username: "admin@example.com"},
		},
		{
			name: "https instance url",
			org:  Org{Alias: "prod", InstanceURL: "https://example.my.salesforce.com"},
		},
		{
			name:    "no identity",
			org:     Org{},
			wantErr: true,
		},
		{
			name:    "whitespace identity",
			org:     Org{Alias: "  "},
			wantErr: true,
		},
		{
			name:    "http instance url",
			org:     Org{Alias: "prod", InstanceURL: "http://example.my.salesforce.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.org.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrg_Label(t *testing.T) {
	if got := (&Org{Alias: "prod", Username: "admin@example.com"}).Label(); got != "prod" {
		t.Errorf("Label() = %q, alias wins", got)
	}
	if got := (&Org{Username: "admin@example.com"}).Label(); got != "admin@example.com" {
		t.Errorf("Label() = %q, want username fallback", got)
	}
}

func TestPair_Validate(t *testing.T) {
	valid := Pair{Source: Org{Alias: "prod"}, Target: Org{Alias: "staging"}}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	missingTarget := Pair{Source: Org{Alias: "prod"}}
	if err := missingTarget.Validate(); err == nil {
		t.Error("Validate() expected error for empty target org")
	}
}

func TestPair_Swapped(t *testing.T) {
	pair := Pair{Source: Org{Alias: "prod"}, Target: Org{Alias: "staging"}}
	swapped := pair.Swapped()

	if swapped.Source.Alias != "staging" || swapped.Target.Alias != "prod" {
		t.Errorf("Swapped() = %+v", swapped)
	}
	if pair.Source.Alias != "prod" {
		t.Error("Swapped() must not mutate the receiver")
	}
}
